package session

import (
	"fmt"

	"github.com/JonMunkholm/datamanager/internal/config"
	"github.com/JonMunkholm/datamanager/internal/core"
)

// OptionsFromConfig maps the import, session, and storage settings onto
// manager options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		IdleTTL:         cfg.Session.IdleTTL,
		MaxSessions:     cfg.Session.MaxSessions,
		MaxFileSize:     cfg.Import.MaxFileSize,
		ImportTimeout:   cfg.Import.Timeout,
		LayoutTimeout:   cfg.Storage.WriteTimeout,
		LayoutRetention: cfg.Storage.LayoutRetention,
	}

	if cfg.Import.FallbackCharset != "" {
		enc, err := core.LookupCharset(cfg.Import.FallbackCharset)
		if err != nil {
			return Options{}, fmt.Errorf("fallback charset: %w", err)
		}
		opts.Fallback = enc
	}
	return opts, nil
}

// NewLimiter builds the shared import limiter from config.
func NewLimiter(cfg *config.Config) *core.ImportLimiter {
	return core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
}
