package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tells the posting engine which side of the ledger a document
// drives: sales documents credit income and tax payable, purchase documents
// debit expense and tax recoverable.
type DocumentKind string

const (
	DocumentSale     DocumentKind = "sale"
	DocumentPurchase DocumentKind = "purchase"
)

// SourceDocument is the slice of an invoice or bill the posting engine needs.
// Amounts are already in the tenant's currency; the core does no conversion.
type SourceDocument struct {
	Kind            DocumentKind
	Reference       DocumentRef
	TenantID        int64
	ReferenceNumber string
	Date            time.Time
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	TaxRateID       *int64
	CounterpartyID  *int64
	CreatorID       *int64
}

// PostingAccounts names the three account codes a document posting touches.
// Control is the receivable/payable control account, Net the income/expense
// account, Tax the tax-payable/tax-recoverable account.
type PostingAccounts struct {
	Control string
	Net     string
	Tax     string
}

// PostingLine is one computed leg of a posting before persistence.
type PostingLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Validate checks the document fields the posting template depends on.
// Failures are ValidationErrors so adapters can map them to bad-request
// responses without inspecting message text.
func (d SourceDocument) Validate() error {
	if d.Kind != DocumentSale && d.Kind != DocumentPurchase {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document kind %q", d.Kind)}
	}
	if _, ok := ValidReferenceKinds[d.Reference.Kind]; !ok {
		return &ValidationError{Field: "reference_kind", Message: fmt.Sprintf("unknown reference kind %q", d.Reference.Kind)}
	}
	if d.Reference.ID <= 0 {
		return &ValidationError{Field: "reference_id", Message: "must be set"}
	}
	if d.TenantID <= 0 {
		return &ValidationError{Field: "tenant", Message: "document must carry a tenant id"}
	}
	if d.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "document must carry a date"}
	}
	if d.Subtotal.IsNegative() || d.TaxAmount.IsNegative() {
		return &ValidationError{Field: "amounts", Message: "subtotal and tax cannot be negative"}
	}
	if !d.Subtotal.Add(d.TaxAmount).Equal(d.TotalAmount) {
		return &ValidationError{Field: "total_amount", Message: fmt.Sprintf("total %s does not equal subtotal %s + tax %s",
			d.TotalAmount.StringFixed(2), d.Subtotal.StringFixed(2), d.TaxAmount.StringFixed(2))}
	}
	return nil
}

// BuildPostingLines emits the fixed 2–3 line double-entry template for a
// document:
//
//	sale:      DR control (total)   / CR income (subtotal), CR tax payable (tax)
//	purchase:  CR control (total)   / DR expense (subtotal), DR tax recoverable (tax)
//
// The tax line is omitted when the tax amount is zero. Because the template is
// the only way lines are produced, a balanced entry is structural; the
// explicit balance check in ValidatePostingLines is the fatal backstop.
func BuildPostingLines(doc SourceDocument, accounts PostingAccounts) ([]PostingLine, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if accounts.Control == "" || accounts.Net == "" {
		return nil, errors.New("posting accounts must name control and net account codes")
	}
	if accounts.Tax == "" && doc.TaxAmount.IsPositive() {
		return nil, errors.New("posting accounts must name a tax account when the document carries tax")
	}

	total := doc.TotalAmount.Round(MoneyScale)
	subtotal := doc.Subtotal.Round(MoneyScale)
	tax := doc.TaxAmount.Round(MoneyScale)

	var lines []PostingLine
	switch doc.Kind {
	case DocumentSale:
		lines = append(lines, PostingLine{AccountCode: accounts.Control, Debit: total, Credit: decimal.Zero})
		lines = append(lines, PostingLine{AccountCode: accounts.Net, Debit: decimal.Zero, Credit: subtotal})
		if tax.IsPositive() {
			lines = append(lines, PostingLine{AccountCode: accounts.Tax, Debit: decimal.Zero, Credit: tax})
		}
	case DocumentPurchase:
		lines = append(lines, PostingLine{AccountCode: accounts.Control, Debit: decimal.Zero, Credit: total})
		lines = append(lines, PostingLine{AccountCode: accounts.Net, Debit: subtotal, Credit: decimal.Zero})
		if tax.IsPositive() {
			lines = append(lines, PostingLine{AccountCode: accounts.Tax, Debit: tax, Credit: decimal.Zero})
		}
	}

	if err := ValidatePostingLines(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// ValidatePostingLines enforces the double-entry invariant: total debits must
// exactly equal total credits. A violation is fatal: an imbalanced entry is
// rejected, never persisted.
func ValidatePostingLines(lines []PostingLine) error {
	if len(lines) < 2 {
		return errors.New("posting must have at least 2 lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if line.AccountCode == "" {
			return errors.New("posting line missing account code")
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("negative amount on account %s", line.AccountCode)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("line for account %s has both debit and credit", line.AccountCode)
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("posting imbalance: debits %s != credits %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return nil
}

// transactionTypeFor maps a document to the transaction_type stored on the
// journal entry header.
func transactionTypeFor(doc SourceDocument) string {
	switch doc.Kind {
	case DocumentSale:
		return "sales_invoice"
	case DocumentPurchase:
		return "purchase_bill"
	}
	return "journal"
}
