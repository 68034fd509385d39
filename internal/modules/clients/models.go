package clients

import (
	"time"
)

// Client represents a credit customer. The name is the business identity:
// unique across all clients and the key imports resolve against.
type Client struct {
	ID           int       `json:"id"`
	ClientName   string    `json:"client_name"`
	CreditPeriod int       `json:"credit_period"` // days until payment is due
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
