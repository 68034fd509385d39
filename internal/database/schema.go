package database

// Schema is the single source of truth for the persistent layout.
// Transactions are keyed by voucher number (the business key) and cascade
// away with their owning client. The CHECK constraints back the write-time
// validation in the repositories.
const Schema = `
CREATE TABLE IF NOT EXISTS clients (
    id INTEGER PRIMARY KEY,
    client_name TEXT UNIQUE NOT NULL,
    credit_period INTEGER NOT NULL DEFAULT 30 CHECK (credit_period >= 0),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    vch_no TEXT PRIMARY KEY,
    transaction_date TEXT NOT NULL,
    due_date TEXT NOT NULL,
    client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
    vch_type TEXT NOT NULL DEFAULT '',
    debit TEXT NOT NULL DEFAULT '0',
    credit TEXT NOT NULL DEFAULT '0',
    status TEXT NOT NULL DEFAULT 'unpaid' CHECK (status IN ('paid', 'unpaid')),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    CHECK (due_date >= transaction_date)
);

CREATE INDEX IF NOT EXISTS idx_transactions_client ON transactions(client_id);
CREATE INDEX IF NOT EXISTS idx_transactions_due ON transactions(due_date, status);
`

// Migrate applies the schema
func (db *DB) Migrate() error {
	_, err := db.conn.Exec(Schema)
	return err
}
