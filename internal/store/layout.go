package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/datamanager/internal/core"
)

// Layout stores one table's column layout under core.LayoutKey in a
// namespace of a KV. It implements core.LayoutStore.
type Layout struct {
	kv        KV
	namespace string
}

// NewLayout binds a layout slot to namespace.
func NewLayout(kv KV, namespace string) *Layout {
	return &Layout{kv: kv, namespace: namespace}
}

// LoadLayout returns the saved columns, or false when nothing is saved.
func (l *Layout) LoadLayout(ctx context.Context) ([]core.Column, bool, error) {
	data, ok, err := l.kv.Get(ctx, l.namespace, core.LayoutKey)
	if err != nil {
		return nil, false, fmt.Errorf("load layout %s: %w", l.namespace, err)
	}
	if !ok {
		return nil, false, nil
	}

	cols, err := core.DecodeLayout(data)
	if err != nil {
		return nil, false, err
	}
	return cols, true, nil
}

// SaveLayout replaces the saved columns.
func (l *Layout) SaveLayout(ctx context.Context, cols []core.Column) error {
	data, err := core.EncodeLayout(cols)
	if err != nil {
		return err
	}
	if err := l.kv.Put(ctx, l.namespace, core.LayoutKey, data); err != nil {
		return fmt.Errorf("save layout %s: %w", l.namespace, err)
	}
	return nil
}

// ClearLayout removes the saved columns.
func (l *Layout) ClearLayout(ctx context.Context) error {
	if err := l.kv.Delete(ctx, l.namespace, core.LayoutKey); err != nil {
		return fmt.Errorf("clear layout %s: %w", l.namespace, err)
	}
	return nil
}
