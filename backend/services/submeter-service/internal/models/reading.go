package models

// Field names a form input.
type Field string

// Form fields.
const (
	FieldCurrent  Field = "current"
	FieldPrevious Field = "previous"
	FieldRate     Field = "rate"
)

// Fields lists every form input in display order.
var Fields = []Field{FieldCurrent, FieldPrevious, FieldRate}

// Valid reports whether f is one of the form inputs.
func (f Field) Valid() bool {
	switch f {
	case FieldCurrent, FieldPrevious, FieldRate:
		return true
	default:
		return false
	}
}

// ReadingInput holds the raw, user-edited text of the three inputs.
type ReadingInput struct {
	Current  string `json:"current"`
	Previous string `json:"previous"`
	Rate     string `json:"rate"`
}

// Get returns the raw text of field f.
func (in ReadingInput) Get(f Field) string {
	switch f {
	case FieldCurrent:
		return in.Current
	case FieldPrevious:
		return in.Previous
	case FieldRate:
		return in.Rate
	default:
		return ""
	}
}

// With returns a copy of in with field f replaced.
func (in ReadingInput) With(f Field, value string) ReadingInput {
	switch f {
	case FieldCurrent:
		in.Current = value
	case FieldPrevious:
		in.Previous = value
	case FieldRate:
		in.Rate = value
	}
	return in
}

// ValidatedReading is a reading whose three values are finite and strictly positive.
type ValidatedReading struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Rate     float64 `json:"rate"`
}

// FieldErrors maps each invalid field to its message.
type FieldErrors map[Field]string

// Has reports whether f failed validation.
func (e FieldErrors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Clone returns an independent copy; nil stays nil.
func (e FieldErrors) Clone() FieldErrors {
	if e == nil {
		return nil
	}
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
