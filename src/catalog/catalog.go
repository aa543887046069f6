// Package catalog serves the distinct postal codes present in the readings table.
package catalog

import (
	"context"
	"errors"

	"groundwater-quality-api/src/types"
)

var (
	ErrEmptyTable  = errors.New("no records found")
	ErrNoPostCodes = errors.New("no unique postal code records found")
)

// Scanner lists every kode_pos/kelurahan pair in storage order, with the number of items read.
type Scanner interface {
	ScanPostalCodes(ctx context.Context) ([]types.PostalCode, int, error)
}

// Catalog lists distinct postal codes through a Scanner.
type Catalog struct {
	scanner Scanner
}

func New(scanner Scanner) *Catalog {
	return &Catalog{scanner: scanner}
}

// List returns one entry per distinct kode_pos. Storage errors are returned unchanged;
// ErrEmptyTable and ErrNoPostCodes report the two empty outcomes.
func (c *Catalog) List(ctx context.Context) ([]types.PostalCode, error) {
	entries, scanned, err := c.scanner.ScanPostalCodes(ctx)
	if err != nil {
		return nil, err
	}
	if scanned == 0 {
		return nil, ErrEmptyTable
	}

	unique := Dedup(entries)
	if len(unique) == 0 {
		return nil, ErrNoPostCodes
	}
	return unique, nil
}

// Dedup keeps the first-seen kelurahan for each kode_pos, preserving first-seen order.
func Dedup(entries []types.PostalCode) []types.PostalCode {
	seen := make(map[int64]struct{}, len(entries))
	unique := make([]types.PostalCode, 0, len(entries))

	for _, e := range entries {
		if _, ok := seen[e.KodePos]; ok {
			continue
		}
		seen[e.KodePos] = struct{}{}
		unique = append(unique, e)
	}

	return unique
}
