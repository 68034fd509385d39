package reminders

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/creditdesk/payment-reminder/internal/modules/transactions"
)

func dueEntry(name, dueDate, debit string) transactions.DueTransaction {
	return transactions.DueTransaction{
		ClientName: name,
		DueDate:    dueDate,
		Debit:      decimal.RequireFromString(debit),
	}
}

func TestBuildDigest_SingleEntry(t *testing.T) {
	digest := BuildDigest([]transactions.DueTransaction{
		dueEntry("Acme Traders", "2024-01-15", "1500.5"),
	})

	assert.True(t, strings.HasPrefix(digest, "📅 *Payment Reminders for Today*\n\n"))
	assert.Contains(t, digest, "👤 *Acme Traders*")
	assert.Contains(t, digest, "Due: _2024-01-15_")
	// Amounts always carry two decimal places
	assert.Contains(t, digest, "*₹* *1500.50*")
	assert.NotContains(t, digest, "more clients")
}

func TestBuildDigest_CapsDetailAtFive(t *testing.T) {
	var due []transactions.DueTransaction
	for i := 1; i <= 8; i++ {
		due = append(due, dueEntry(fmt.Sprintf("Client %d", i), "2024-01-15", "100"))
	}

	digest := BuildDigest(due)

	assert.Equal(t, 5, strings.Count(digest, "👤"))
	assert.Contains(t, digest, "Client 5")
	assert.NotContains(t, digest, "Client 6")
	assert.Contains(t, digest, "🔔 And *3* more clients with payments due today.")
}

func TestBuildDigest_ExactlyFiveHasNoOverflow(t *testing.T) {
	var due []transactions.DueTransaction
	for i := 1; i <= 5; i++ {
		due = append(due, dueEntry(fmt.Sprintf("Client %d", i), "2024-01-15", "100"))
	}

	digest := BuildDigest(due)

	assert.Equal(t, 5, strings.Count(digest, "👤"))
	assert.NotContains(t, digest, "more clients")
}
