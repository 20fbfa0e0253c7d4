package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount parses a monetary or count cell such as "$61,000".
// Everything except digits, one decimal point, and a sign ahead of the first
// digit is removed before parsing. A residual that is not a number, such as
// the empty residual of "N/A", is a *MalformedValueError.
func NormalizeAmount(s string) (decimal.Decimal, error) {
	residual, ok := stripFormatting(s)
	if !ok {
		return decimal.Zero, &MalformedValueError{Value: s}
	}
	d, err := decimal.NewFromString(residual)
	if err != nil {
		return decimal.Zero, &MalformedValueError{Value: s}
	}
	return d, nil
}

// NormalizeCount parses a population cell such as "3,104,614". The value
// must be a non-negative integer.
func NormalizeCount(s string) (int64, error) {
	d, err := NormalizeAmount(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || d.IsNegative() {
		return 0, &MalformedValueError{Value: s}
	}
	return d.IntPart(), nil
}

// stripFormatting reduces s to [sign]digits[.digits]. It reports false when
// no digit remains, a sign follows a digit, or more than one point remains.
func stripFormatting(s string) (string, bool) {
	var sign, body strings.Builder
	digits, points := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			body.WriteRune(r)
			digits++
		case r == '.':
			body.WriteRune(r)
			points++
		case r == '-' || r == '+':
			if body.Len() > 0 || sign.Len() > 0 {
				return "", false
			}
			sign.WriteRune(r)
		}
	}
	if digits == 0 || points > 1 {
		return "", false
	}

	out := body.String()
	if strings.HasPrefix(out, ".") {
		out = "0" + out
	}
	if strings.HasSuffix(out, ".") {
		out += "0"
	}
	if sign.String() == "-" {
		out = "-" + out
	}
	return out, true
}

// Normalize converts raw rows into a new immutable Table. Keys are folded
// (see [NormalizeState], [NormalizeCity], [NormalizeIATA]) and census cells
// are parsed. The first malformed cell aborts the load.
func Normalize(raws []RawRecord) (*Table, error) {
	records := make([]Record, 0, len(raws))
	for i := range raws {
		rec, err := normalizeRecord(raws[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return &Table{records: records}, nil
}

func normalizeRecord(raw RawRecord) (Record, error) {
	stateAttrs, err := parseAttributes(raw, raw.StatePopulation, "Population_state", raw.StateIncome, "Median Household Income_state")
	if err != nil {
		return Record{}, err
	}
	cityAttrs, err := parseAttributes(raw, raw.CityPopulation, "Population_city", raw.CityIncome, "Median Household Income_city")
	if err != nil {
		return Record{}, err
	}

	return Record{
		EventID:    strings.TrimSpace(raw.EventID),
		City:       NormalizeCity(raw.City),
		State:      NormalizeState(raw.State),
		IATA:       NormalizeIATA(raw.IATA),
		StateAttrs: stateAttrs,
		CityAttrs:  cityAttrs,
	}, nil
}

// parseAttributes returns nil when either cell is blank. Both cells are
// still validated so a malformed value is never hidden by a blank neighbor.
func parseAttributes(raw RawRecord, pop, popCol, income, incomeCol string) (*Attributes, error) {
	pop, income = strings.TrimSpace(pop), strings.TrimSpace(income)

	var attrs Attributes
	if pop != "" {
		n, err := NormalizeCount(pop)
		if err != nil {
			return nil, locate(err, popCol, raw.Line)
		}
		attrs.Population = n
	}
	if income != "" {
		d, err := NormalizeAmount(income)
		if err != nil {
			return nil, locate(err, incomeCol, raw.Line)
		}
		attrs.Income = d
	}

	if pop == "" || income == "" {
		return nil, nil
	}
	return &attrs, nil
}

// locate stamps the source column and line onto a MalformedValueError.
func locate(err error, column string, line int) error {
	var mv *MalformedValueError
	if errors.As(err, &mv) {
		return &MalformedValueError{Value: mv.Value, Column: column, Line: line}
	}
	return err
}
