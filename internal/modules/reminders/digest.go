package reminders

import (
	"fmt"
	"strings"

	"github.com/creditdesk/payment-reminder/internal/modules/transactions"
)

// maxDetailLines caps how many clients get their own block in the digest;
// the remainder is folded into a single trailing count line.
const maxDetailLines = 5

// BuildDigest formats the WhatsApp digest for a list of due transactions.
// The first maxDetailLines entries become detail blocks; anything beyond
// that is summarized as an overflow count.
func BuildDigest(due []transactions.DueTransaction) string {
	var b strings.Builder
	b.WriteString("📅 *Payment Reminders for Today*\n\n")

	detail := due
	if len(detail) > maxDetailLines {
		detail = detail[:maxDetailLines]
	}

	for _, d := range detail {
		fmt.Fprintf(&b, "👤 *%s*\n", d.ClientName)
		fmt.Fprintf(&b, "       Due: _%s_\n", d.DueDate)
		fmt.Fprintf(&b, "       Amount: *₹* *%s*\n\n", d.Debit.StringFixed(2))
	}

	if remaining := len(due) - maxDetailLines; remaining > 0 {
		fmt.Fprintf(&b, "🔔 And *%d* more clients with payments due today.", remaining)
	}

	return b.String()
}
