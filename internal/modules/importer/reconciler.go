package importer

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/creditdesk/payment-reminder/internal/database"
	"github.com/creditdesk/payment-reminder/internal/modules/clients"
	"github.com/creditdesk/payment-reminder/internal/modules/transactions"
)

// totalMarker is the end-of-report footer emitted by statement exports
const totalMarker = "Total:"

// dateLayouts accepted for the transaction date column, tried in order
var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02"}

// Summary reports what an import created. Updated rows are intentionally
// not counted: re-importing the same statement yields zeros.
type Summary struct {
	ClientsCreated      int `json:"clients_created"`
	TransactionsCreated int `json:"transactions_created"`
}

// Reconciler upserts clients and transactions from a parsed statement.
// The whole import runs inside a single database transaction: either every
// row lands or none do.
type Reconciler struct {
	db           *database.DB
	clientRepo   *clients.Repository
	txRepo       *transactions.Repository
	log          zerolog.Logger
	now          func() time.Time
	newVoucherID func() string
}

// NewReconciler creates a new import reconciler
func NewReconciler(db *database.DB, clientRepo *clients.Repository, txRepo *transactions.Repository, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		db:         db,
		clientRepo: clientRepo,
		txRepo:     txRepo,
		log:        log.With().Str("component", "import_reconciler").Logger(),
		now:        time.Now,
		newVoucherID: func() string {
			return uuid.New().String()[:8]
		},
	}
}

// Reconcile processes the rows in two passes: client resolution first, then
// transaction upserts against the resolved clients. New clients get the
// supplied credit period (days).
func (r *Reconciler) Reconcile(rows []Row, creditPeriod int) (*Summary, error) {
	summary := &Summary{}

	err := database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		// Pass 1: resolve clients by name
		byName := make(map[string]*clients.Client)
		for _, row := range rows {
			name := normalizeName(row.ClientName)
			if name == "" {
				continue
			}
			if _, seen := byName[name]; seen {
				continue
			}

			client, created, err := r.clientRepo.GetOrCreateTx(tx, name, creditPeriod)
			if err != nil {
				return fmt.Errorf("failed to resolve client %q: %w", name, err)
			}
			if created {
				summary.ClientsCreated++
			}
			byName[name] = client
		}

		// Pass 2: upsert transactions by voucher number
		for _, row := range rows {
			name := normalizeName(row.ClientName)
			if name == "" {
				continue
			}
			client := byName[name]

			debit := parseAmount(row.Debit)
			credit := parseAmount(row.Credit)
			if debit.IsZero() && credit.IsZero() {
				// Subtotal or annotation line, not a transaction
				continue
			}

			txnDate := r.parseDate(row.Date)
			dueDate := txnDate.AddDate(0, 0, client.CreditPeriod)

			vchNo := row.VchNo
			if vchNo == "" {
				vchNo = r.synthesizeVoucher(name)
				r.log.Debug().Str("vch_no", vchNo).Str("client", name).Msg("Synthesized voucher number")
			}

			created, err := r.txRepo.UpsertTx(tx, &transactions.Transaction{
				VchNo:           vchNo,
				TransactionDate: txnDate.Format("2006-01-02"),
				DueDate:         dueDate.Format("2006-01-02"),
				ClientID:        client.ID,
				VchType:         row.VchType,
				Debit:           debit,
				Credit:          credit,
				Status:          transactions.StatusUnpaid,
			})
			if err != nil {
				return fmt.Errorf("failed to upsert voucher %q: %w", vchNo, err)
			}
			if created {
				summary.TransactionsCreated++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Int("clients_created", summary.ClientsCreated).
		Int("transactions_created", summary.TransactionsCreated).
		Int("rows", len(rows)).
		Msg("Import reconciled")

	return summary, nil
}

// normalizeName trims the raw client cell; empty names and the report
// footer are skipped entirely
func normalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" || name == totalMarker {
		return ""
	}
	return name
}

// parseAmount coerces a raw cell to a decimal; missing or non-numeric
// values become zero. Thousands separators are stripped first.
func parseAmount(raw string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseDate tries the accepted layouts, defaulting to today when the cell
// is missing or unparseable
func (r *Reconciler) parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return r.now()
}

// synthesizeVoucher builds a voucher number for rows that arrive without
// one. A random suffix keeps rapid repeated imports from colliding.
func (r *Reconciler) synthesizeVoucher(clientName string) string {
	slug := strings.ToUpper(strings.ReplaceAll(clientName, " ", "-"))
	if len(slug) > 12 {
		slug = slug[:12]
	}
	return fmt.Sprintf("%s-%s", slug, r.newVoucherID())
}
