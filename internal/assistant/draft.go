package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentDraft is the structured output of the assistant: a sale or purchase
// document proposal awaiting human review. Amounts are strings on the wire so
// the model cannot introduce float artifacts.
type DocumentDraft struct {
	Kind             string  `json:"kind" jsonschema:"enum=sale,enum=purchase" jsonschema_description:"Document kind"`
	ReferenceNumber  string  `json:"reference_number" jsonschema_description:"Invoice or bill number if mentioned, otherwise empty"`
	Date             string  `json:"date" jsonschema_description:"Document date in YYYY-MM-DD"`
	CounterpartyName string  `json:"counterparty_name" jsonschema_description:"Customer or supplier name if mentioned, otherwise empty"`
	Subtotal         string  `json:"subtotal" jsonschema_description:"Net amount before tax, e.g. 100.00"`
	TaxAmount        string  `json:"tax_amount" jsonschema_description:"Tax amount, e.g. 15.00"`
	TotalAmount      string  `json:"total_amount" jsonschema_description:"Gross amount, subtotal plus tax"`
	TaxRateName      string  `json:"tax_rate_name" jsonschema_description:"Name of the applied tax rate, or empty when untaxed"`
	Confidence       float64 `json:"confidence" jsonschema_description:"Confidence in this interpretation, 0.0-1.0"`
	Reasoning        string  `json:"reasoning" jsonschema_description:"Short explanation of the interpretation"`
}

// Normalize trims whitespace and lowercases the kind so validation and
// downstream dispatch see canonical values.
func (d *DocumentDraft) Normalize() {
	d.Kind = strings.ToLower(strings.TrimSpace(d.Kind))
	d.ReferenceNumber = strings.TrimSpace(d.ReferenceNumber)
	d.Date = strings.TrimSpace(d.Date)
	d.CounterpartyName = strings.TrimSpace(d.CounterpartyName)
	d.Subtotal = strings.TrimSpace(d.Subtotal)
	d.TaxAmount = strings.TrimSpace(d.TaxAmount)
	d.TotalAmount = strings.TrimSpace(d.TotalAmount)
	d.TaxRateName = strings.TrimSpace(d.TaxRateName)
}

// Validate checks the draft's internal consistency before it is shown to a
// user. A draft that fails here is discarded, never repaired.
func (d *DocumentDraft) Validate() error {
	if d.Kind != "sale" && d.Kind != "purchase" {
		return fmt.Errorf("kind must be sale or purchase, got %q", d.Kind)
	}

	if d.Date != "" {
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			return fmt.Errorf("date %q is not YYYY-MM-DD", d.Date)
		}
	}

	subtotal, err := decimal.NewFromString(d.Subtotal)
	if err != nil {
		return fmt.Errorf("subtotal %q is not a decimal", d.Subtotal)
	}
	tax, err := decimal.NewFromString(d.TaxAmount)
	if err != nil {
		return fmt.Errorf("tax_amount %q is not a decimal", d.TaxAmount)
	}
	total, err := decimal.NewFromString(d.TotalAmount)
	if err != nil {
		return fmt.Errorf("total_amount %q is not a decimal", d.TotalAmount)
	}

	if subtotal.IsNegative() || tax.IsNegative() {
		return fmt.Errorf("amounts cannot be negative")
	}
	if !subtotal.Add(tax).Equal(total) {
		return fmt.Errorf("subtotal %s + tax %s does not equal total %s", subtotal, tax, total)
	}

	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", d.Confidence)
	}
	return nil
}
