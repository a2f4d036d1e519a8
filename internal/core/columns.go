package core

import (
	"strconv"
	"strings"
)

// BuildColumns turns ordered candidate labels into columns with unique ids.
//
// Each candidate is trimmed; a blank one becomes UnnamedColumn. The first
// occurrence of a base label gets id "<base>-1" and keeps the label as is.
// The n-th occurrence gets id "<base>-n" and label "<base> (n)".
//
//	BuildColumns([]string{"Name", "Name", " ", "Age"})
//	// [{Name-1 Name} {Name-2 Name (2)} {Unnamed Column-1 Unnamed Column} {Age-1 Age}]
//
// The id suffix after the last '-' is always the occurrence count, so ids
// stay unique even when a label itself ends in "-<digits>".
func BuildColumns(candidates []string) []Column {
	seen := make(map[string]int, len(candidates))
	cols := make([]Column, len(candidates))

	for i, raw := range candidates {
		base := normalizeLabel(raw)
		seen[base]++
		n := seen[base]

		label := base
		if n > 1 {
			label = base + " (" + strconv.Itoa(n) + ")"
		}
		cols[i] = Column{ID: base + "-" + strconv.Itoa(n), Label: label}
	}

	return cols
}

// SyntheticLabels returns "col 1" .. "col n".
func SyntheticLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = syntheticLabel(i)
	}
	return labels
}

func syntheticLabel(i int) string {
	return "col " + strconv.Itoa(i+1)
}

// normalizeLabel trims a label and substitutes UnnamedColumn for blanks.
func normalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnnamedColumn
	}
	return s
}
