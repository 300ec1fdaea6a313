package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
)

var _ Repository = (*CSVRepository)(nil)

// CSVRepository is a Repository loaded from a backing CSV file. It never
// writes the file itself; CSVUnitOfWork does that on commit.
type CSVRepository struct {
	index
	path string
}

// LoadCSVRepository reads every row of path. A missing or zero-byte file is an
// empty catalog. Any undecodable row aborts the load with ErrMalformedRecord so
// that a later commit cannot silently drop the rows that were skipped.
func LoadCSVRepository(path string) (*CSVRepository, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &CSVRepository{index: newIndex(), path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	products, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &CSVRepository{index: newIndex(products...), path: path}, nil
}

func (r *CSVRepository) Path() string { return r.path }

func readCSV(rd io.Reader) ([]Product, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedRecord, err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformedRecord, header)
	}

	var out []Product
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}

		p, err := DecodeRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, p)
	}
}

// WriteCSV writes the header row followed by one row per product, in the
// order given. A product that would not load back unchanged fails the whole
// write (see CheckRecord).
func WriteCSV(w io.Writer, products []Product) error {
	for _, p := range products {
		if err := CheckRecord(p); err != nil {
			return fmt.Errorf("sku %q: %w", p.SKU, err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write(EncodeRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
