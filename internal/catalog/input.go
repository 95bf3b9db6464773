package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadInput is wrapped by every product validation failure, so the
// HTTP layer can map the whole family with one errors.Is check.
var ErrBadInput = errors.New("invalid product input")

func badInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadInput, fmt.Sprintf(format, args...))
}

// ProductInput is the typed form of a create/update request. The HTTP
// layer decodes strictly into it, so a string-typed stock or price is
// rejected at the boundary instead of being coerced.
type ProductInput struct {
	Name        string   `json:"name"`
	PriceCents  int64    `json:"price_cents"`
	Stock       int      `json:"stock"`
	SizeOptions []string `json:"size_options"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
}

// Normalize trims fields and cleans the size-option list: entries are
// trimmed, blanks dropped, original order kept. Ambiguous input
// (duplicate sizes, negative numbers) is rejected, not coerced.
func (in *ProductInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return badInput("product name is required")
	}
	if in.PriceCents < 0 {
		return badInput("price must not be negative")
	}
	if in.Stock < 0 {
		return badInput("stock must not be negative")
	}

	seen := make(map[string]bool, len(in.SizeOptions))
	sizes := make([]string, 0, len(in.SizeOptions))
	for _, s := range in.SizeOptions {
		t := strings.TrimSpace(s)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			return badInput("duplicate size option %q", t)
		}
		seen[key] = true
		sizes = append(sizes, t)
	}
	in.SizeOptions = sizes
	return nil
}
