package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction status values
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Transaction represents a single voucher entry on a client's account.
// The voucher number is the business key: globally unique and the target
// of import upserts.
type Transaction struct {
	VchNo           string          `json:"vch_no"`
	TransactionDate string          `json:"transaction_date"` // YYYY-MM-DD
	DueDate         string          `json:"due_date"`         // YYYY-MM-DD
	ClientID        int             `json:"client_id"`
	ClientName      string          `json:"client_name,omitempty"` // joined, read-only
	VchType         string          `json:"vch_type"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DueTransaction is a reminder-query row: an unpaid transaction joined
// with its client
type DueTransaction struct {
	ClientName string
	Debit      decimal.Decimal
	DueDate    string
}

// ListFilter narrows List results
type ListFilter struct {
	Status     string // exact match, "" disables
	ClientName string // substring match on the joined client name
	DateFrom   string // transaction_date >= DateFrom
	DateTo     string // transaction_date <= DateTo
}

// ValidStatus reports whether s is one of the known status values
func ValidStatus(s string) bool {
	return s == StatusPaid || s == StatusUnpaid
}
