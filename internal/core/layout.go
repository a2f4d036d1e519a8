package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// LayoutKey is the slot name the column layout is stored under.
const LayoutKey = "columns"

// LayoutStore persists the column layout of one table. A TableState calls
// Load once at construction and Save after every change to its column list.
type LayoutStore interface {
	LoadLayout(ctx context.Context) ([]Column, bool, error)
	SaveLayout(ctx context.Context, cols []Column) error
	ClearLayout(ctx context.Context) error
}

// EncodeLayout serializes columns as a JSON array of {id, label}.
func EncodeLayout(cols []Column) ([]byte, error) {
	if cols == nil {
		cols = []Column{}
	}
	return json.Marshal(cols)
}

// DecodeLayout parses a stored layout and checks that ids are unique and
// non-empty.
func DecodeLayout(data []byte) ([]Column, error) {
	var cols []Column
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}

	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.ID == "" {
			return nil, fmt.Errorf("decode layout: column with empty id")
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("decode layout: duplicate column id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return cols, nil
}
