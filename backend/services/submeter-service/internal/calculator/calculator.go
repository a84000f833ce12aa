// Package calculator holds the pure bill arithmetic: parsing, validation and formatting of
// meter readings. It has no state and no I/O.
package calculator

import (
	"math"
	"strconv"
	"strings"

	"submeter/backend/services/submeter-service/internal/models"
)

// Validation messages, one per field.
const (
	MsgCurrent  = "Current amount must be a positive number"
	MsgPrevious = "Previous amount must be a positive number"
	MsgRate     = "KWH rate must be a positive number"
)

var messages = map[models.Field]string{
	models.FieldCurrent:  MsgCurrent,
	models.FieldPrevious: MsgPrevious,
	models.FieldRate:     MsgRate,
}

// Message returns the fixed validation message for f.
func Message(f models.Field) string {
	return messages[f]
}

// ParseReading parses raw as a locale-free decimal number. ok is false for empty,
// non-numeric, non-finite and non-positive input alike.
func ParseReading(raw string) (value float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" || !isDecimalLiteral(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// isDecimalLiteral rejects the spellings strconv accepts beyond plain decimals
// ("inf", "nan", hex floats, digit separators).
func isDecimalLiteral(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '+', r == '-', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// Validate checks every field independently and collects all failures.
// The returned reading is only meaningful when errs is empty.
func Validate(in models.ReadingInput) (models.ValidatedReading, models.FieldErrors) {
	parsed := make(map[models.Field]float64, len(models.Fields))
	errs := models.FieldErrors{}
	for _, f := range models.Fields {
		v, ok := ParseReading(in.Get(f))
		if !ok {
			errs[f] = Message(f)
			continue
		}
		parsed[f] = v
	}
	if len(errs) > 0 {
		return models.ValidatedReading{}, errs
	}
	return models.ValidatedReading{
		Current:  parsed[models.FieldCurrent],
		Previous: parsed[models.FieldPrevious],
		Rate:     parsed[models.FieldRate],
	}, nil
}

// Amount computes (current - previous) * rate at full precision. A negative result
// (current below previous) is returned as is.
func Amount(r models.ValidatedReading) float64 {
	return (r.Current - r.Previous) * r.Rate
}

// Calculate validates in and, when valid, returns the formatted amount to pay.
func Calculate(in models.ReadingInput) (models.ValidatedReading, string, models.FieldErrors) {
	reading, errs := Validate(in)
	if len(errs) > 0 {
		return models.ValidatedReading{}, "", errs
	}
	return reading, FormatAmount(Amount(reading)), nil
}
