package transactions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"
)

// Repository handles transaction persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new transaction repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "transactions").Logger(),
	}
}

// executor abstracts *sql.DB and *sql.Tx so upserts can run inside the
// import transaction
type executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// validate enforces the write-time invariants: due date never precedes the
// transaction date, amounts never negative, status one of the known values.
func validate(t *Transaction) error {
	if t.VchNo == "" {
		return fmt.Errorf("voucher number is required")
	}
	if _, err := time.Parse(dateLayout, t.TransactionDate); err != nil {
		return fmt.Errorf("invalid transaction date %q: %w", t.TransactionDate, err)
	}
	if _, err := time.Parse(dateLayout, t.DueDate); err != nil {
		return fmt.Errorf("invalid due date %q: %w", t.DueDate, err)
	}
	if t.DueDate < t.TransactionDate {
		return fmt.Errorf("due date %s precedes transaction date %s", t.DueDate, t.TransactionDate)
	}
	if t.Debit.IsNegative() || t.Credit.IsNegative() {
		return fmt.Errorf("debit and credit must be non-negative")
	}
	if t.Status == "" {
		t.Status = StatusUnpaid
	}
	if !ValidStatus(t.Status) {
		return fmt.Errorf("invalid status %q", t.Status)
	}
	return nil
}

// Create inserts a new transaction
func (r *Repository) Create(t *Transaction) (*Transaction, error) {
	if err := validate(t); err != nil {
		return nil, err
	}

	now := time.Now().Format(timeLayout)
	_, err := r.db.Exec(
		`INSERT INTO transactions (vch_no, transaction_date, due_date, client_id, vch_type, debit, credit, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.VchNo, t.TransactionDate, t.DueDate, t.ClientID, t.VchType,
		t.Debit.String(), t.Credit.String(), t.Status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	t.CreatedAt, _ = time.Parse(timeLayout, now)
	t.UpdatedAt = t.CreatedAt
	return t, nil
}

// GetByVchNo retrieves a transaction by voucher number, nil when absent
func (r *Repository) GetByVchNo(vchNo string) (*Transaction, error) {
	row := r.db.QueryRow(
		`SELECT t.vch_no, t.transaction_date, t.due_date, t.client_id, c.client_name,
		        t.vch_type, t.debit, t.credit, t.status, t.created_at, t.updated_at
		 FROM transactions t
		 JOIN clients c ON c.id = t.client_id
		 WHERE t.vch_no = ?`, vchNo,
	)

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// Upsert creates the transaction when its voucher number is new, otherwise
// overwrites every field (last write wins). Returns whether a row was created.
func (r *Repository) Upsert(t *Transaction) (bool, error) {
	return r.UpsertTx(nil, t)
}

// UpsertTx is Upsert running on an open transaction when tx is non-nil.
// Used by the bulk import so all row upserts share one atomic unit.
func (r *Repository) UpsertTx(tx *sql.Tx, t *Transaction) (bool, error) {
	if err := validate(t); err != nil {
		return false, err
	}

	var q executor = r.db
	if tx != nil {
		q = tx
	}

	var exists int
	err := q.QueryRow("SELECT COUNT(*) FROM transactions WHERE vch_no = ?", t.VchNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check voucher existence: %w", err)
	}

	now := time.Now().Format(timeLayout)

	if exists > 0 {
		_, err := q.Exec(
			`UPDATE transactions
			 SET transaction_date = ?, due_date = ?, client_id = ?, vch_type = ?,
			     debit = ?, credit = ?, status = ?, updated_at = ?
			 WHERE vch_no = ?`,
			t.TransactionDate, t.DueDate, t.ClientID, t.VchType,
			t.Debit.String(), t.Credit.String(), t.Status, now, t.VchNo,
		)
		if err != nil {
			return false, fmt.Errorf("failed to update transaction %s: %w", t.VchNo, err)
		}
		return false, nil
	}

	_, err = q.Exec(
		`INSERT INTO transactions (vch_no, transaction_date, due_date, client_id, vch_type, debit, credit, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.VchNo, t.TransactionDate, t.DueDate, t.ClientID, t.VchType,
		t.Debit.String(), t.Credit.String(), t.Status, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", t.VchNo, err)
	}
	return true, nil
}

// UpdateStatus sets the status of a transaction
func (r *Repository) UpdateStatus(vchNo, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}

	now := time.Now().Format(timeLayout)
	result, err := r.db.Exec(
		"UPDATE transactions SET status = ?, updated_at = ? WHERE vch_no = ?",
		status, now, vchNo,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a transaction by voucher number
func (r *Repository) Delete(vchNo string) error {
	result, err := r.db.Exec("DELETE FROM transactions WHERE vch_no = ?", vchNo)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List retrieves transactions joined with their client, newest first
func (r *Repository) List(filter ListFilter) ([]Transaction, error) {
	query := `SELECT t.vch_no, t.transaction_date, t.due_date, t.client_id, c.client_name,
	                 t.vch_type, t.debit, t.credit, t.status, t.created_at, t.updated_at
	          FROM transactions t
	          JOIN clients c ON c.id = t.client_id
	          WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		query += " AND t.status = ?"
		args = append(args, filter.Status)
	}
	if filter.ClientName != "" {
		query += " AND c.client_name LIKE ?"
		args = append(args, "%"+filter.ClientName+"%")
	}
	if filter.DateFrom != "" {
		query += " AND t.transaction_date >= ?"
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		query += " AND t.transaction_date <= ?"
		args = append(args, filter.DateTo)
	}

	query += " ORDER BY t.transaction_date DESC, t.vch_no ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		result = append(result, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return result, nil
}

// GetDueUnpaid returns unpaid transactions whose due date is on or before
// the given day, joined with their client, ordered by due date ascending
// (voucher number as the stable tie-break)
func (r *Repository) GetDueUnpaid(today string) ([]DueTransaction, error) {
	rows, err := r.db.Query(
		`SELECT c.client_name, t.debit, t.due_date
		 FROM clients c
		 JOIN transactions t ON c.id = t.client_id
		 WHERE t.due_date <= ? AND t.status = 'unpaid'
		 ORDER BY t.due_date ASC, t.vch_no ASC`, today,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due transactions: %w", err)
	}
	defer rows.Close()

	var result []DueTransaction
	for rows.Next() {
		var d DueTransaction
		var debit string

		if err := rows.Scan(&d.ClientName, &debit, &d.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan due transaction: %w", err)
		}

		d.Debit, err = decimal.NewFromString(debit)
		if err != nil {
			return nil, fmt.Errorf("invalid stored debit %q: %w", debit, err)
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due transactions: %w", err)
	}

	return result, nil
}

// scanner covers *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(s scanner) (*Transaction, error) {
	var t Transaction
	var debit, credit, createdAt, updatedAt string

	err := s.Scan(
		&t.VchNo, &t.TransactionDate, &t.DueDate, &t.ClientID, &t.ClientName,
		&t.VchType, &debit, &credit, &t.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.Debit, err = decimal.NewFromString(debit); err != nil {
		return nil, fmt.Errorf("invalid stored debit %q: %w", debit, err)
	}
	if t.Credit, err = decimal.NewFromString(credit); err != nil {
		return nil, fmt.Errorf("invalid stored credit %q: %w", credit, err)
	}

	t.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	t.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &t, nil
}
