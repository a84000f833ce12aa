package models

// DefaultAmount is shown before any successful calculation.
const DefaultAmount = "0"

// Result is the outcome of one submission. Exactly one of Amount or Errors is meaningful:
// OK submissions carry the new amount, failed ones carry per-field errors.
type Result struct {
	OK     bool        `json:"ok"`
	Amount string      `json:"amountToPay,omitempty"`
	Errors FieldErrors `json:"errors,omitempty"`
}

// FormState is a snapshot of a calculator session.
type FormState struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Input       ReadingInput `json:"input"`
	AmountToPay string       `json:"amountToPay"`
	Display     string       `json:"display"`
	Errors      FieldErrors  `json:"errors"`
}
