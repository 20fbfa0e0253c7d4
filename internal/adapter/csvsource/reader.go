// Package csvsource reads the event table from CSV and turns it into a
// queryable dataset.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/music-event-insights/internal/domain"
	"github.com/jszwec/csvutil"
	"github.com/samber/lo"
)

// MissingColumnsError reports required header names absent from the file.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// CheckHeader verifies that every required column is present. Extra columns
// are allowed.
func CheckHeader(header []string) error {
	missing := lo.Without(domain.RequiredColumns, header...)
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// ReadRecords decodes every row of the table. Each record carries its
// 1-based line number, counting the header as line 1.
func ReadRecords(r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("read csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = cleanHeader(header)
	if err := CheckHeader(header); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	var records []domain.RawRecord
	for line := 2; ; line++ {
		var rec domain.RawRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read csv: line %d: %w", line, err)
		}
		rec.Line = line
		records = append(records, rec)
	}
	return records, nil
}

// ReadFile opens path and decodes it with [ReadRecords].
func ReadFile(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	return ReadRecords(f)
}

// cleanHeader trims names and drops a UTF-8 byte order mark.
func cleanHeader(header []string) []string {
	return lo.Map(header, func(h string, i int) string {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		return strings.TrimSpace(h)
	})
}
