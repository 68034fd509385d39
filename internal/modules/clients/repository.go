package clients

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository handles client persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new client repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "clients").Logger(),
	}
}

// executor abstracts *sql.DB and *sql.Tx so get-or-create can run inside
// the import transaction
type executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Create inserts a new client
func (r *Repository) Create(client *Client) (*Client, error) {
	return r.createOn(r.db, client)
}

func (r *Repository) createOn(q executor, client *Client) (*Client, error) {
	if client.CreditPeriod < 0 {
		return nil, fmt.Errorf("credit period must be non-negative")
	}

	now := time.Now().Format(timeLayout)
	result, err := q.Exec(
		"INSERT INTO clients (client_name, credit_period, created_at, updated_at) VALUES (?, ?, ?, ?)",
		client.ClientName, client.CreditPeriod, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	client.ID = int(id)
	client.CreatedAt, _ = time.Parse(timeLayout, now)
	client.UpdatedAt = client.CreatedAt

	return client, nil
}

// GetByID retrieves a client by primary key, nil when absent
func (r *Repository) GetByID(id int) (*Client, error) {
	return r.getOne("SELECT id, client_name, credit_period, created_at, updated_at FROM clients WHERE id = ?", id)
}

// GetByName retrieves a client by its unique name, nil when absent
func (r *Repository) GetByName(name string) (*Client, error) {
	return r.getOne("SELECT id, client_name, credit_period, created_at, updated_at FROM clients WHERE client_name = ?", name)
}

func (r *Repository) getOne(query string, arg interface{}) (*Client, error) {
	return scanClient(r.db.QueryRow(query, arg))
}

// GetOrCreate returns the client with the given name, creating it with the
// supplied credit period when missing. Existing clients are left unmodified.
func (r *Repository) GetOrCreate(name string, creditPeriod int) (*Client, bool, error) {
	return r.GetOrCreateTx(nil, name, creditPeriod)
}

// GetOrCreateTx is GetOrCreate running on an open transaction when tx is
// non-nil. Used by the bulk import so client upserts share its atomic unit.
func (r *Repository) GetOrCreateTx(tx *sql.Tx, name string, creditPeriod int) (*Client, bool, error) {
	var q executor = r.db
	if tx != nil {
		q = tx
	}

	existing, err := scanClient(q.QueryRow(
		"SELECT id, client_name, credit_period, created_at, updated_at FROM clients WHERE client_name = ?", name,
	))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	created, err := r.createOn(q, &Client{ClientName: name, CreditPeriod: creditPeriod})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// List retrieves all clients ordered by name, optionally filtered by a
// case-insensitive name substring
func (r *Repository) List(nameFilter string) ([]Client, error) {
	query := "SELECT id, client_name, credit_period, created_at, updated_at FROM clients"
	args := []interface{}{}

	if nameFilter != "" {
		query += " WHERE client_name LIKE ?"
		args = append(args, "%"+nameFilter+"%")
	}
	query += " ORDER BY client_name ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var result []Client
	for rows.Next() {
		var c Client
		var createdAt, updatedAt string

		if err := rows.Scan(&c.ID, &c.ClientName, &c.CreditPeriod, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		c.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return result, nil
}

// Update modifies a client's name and credit period
func (r *Repository) Update(client *Client) error {
	if client.CreditPeriod < 0 {
		return fmt.Errorf("credit period must be non-negative")
	}

	now := time.Now().Format(timeLayout)
	result, err := r.db.Exec(
		"UPDATE clients SET client_name = ?, credit_period = ?, updated_at = ? WHERE id = ?",
		client.ClientName, client.CreditPeriod, now, client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
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

// Delete removes a client; its transactions cascade away via the foreign key
func (r *Repository) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
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

// scanClient scans a single row, returning nil (no error) on sql.ErrNoRows
func scanClient(row *sql.Row) (*Client, error) {
	var c Client
	var createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.ClientName, &c.CreditPeriod, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}

	c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	c.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &c, nil
}
