package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/payment-reminder/internal/database"
	"github.com/creditdesk/payment-reminder/internal/events"
	"github.com/creditdesk/payment-reminder/internal/modules/clients"
	"github.com/creditdesk/payment-reminder/internal/modules/transactions"
	testhelpers "github.com/creditdesk/payment-reminder/internal/testing"
)

func setupImportHandler(t *testing.T) (*Handler, *database.DB, func()) {
	db, cleanup := testhelpers.NewTestDB(t)

	reconciler := NewReconciler(
		db,
		clients.NewRepository(db.Conn(), zerolog.Nop()),
		transactions.NewRepository(db.Conn(), zerolog.Nop()),
		zerolog.Nop(),
	)

	h := NewHandler(reconciler, events.NewManager(zerolog.Nop()), 30, 0, zerolog.Nop())
	return h, db, cleanup
}

func multipartUpload(t *testing.T, csv string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandler_Import(t *testing.T) {
	h, db, cleanup := setupImportHandler(t)
	defer cleanup()

	csv := `Date,Client Name,Vch No.,Debit,Credit
2024-01-01,Acme Traders,V-001,100,0
2024-01-02,Zeta Mills,V-002,200,0
`
	rec := httptest.NewRecorder()
	h.HandleImport(rec, multipartUpload(t, csv, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ClientsCreated      int    `json:"clients_created"`
		TransactionsCreated int    `json:"transactions_created"`
		Message             string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.ClientsCreated)
	assert.Equal(t, 2, resp.TransactionsCreated)
	assert.Contains(t, resp.Message, "Imported 2 new transactions")

	assert.Equal(t, 2, testhelpers.CountRows(t, db, "transactions"))
}

func TestHandler_Import_CreditPeriodOverride(t *testing.T) {
	h, db, cleanup := setupImportHandler(t)
	defer cleanup()

	csv := `Date,Client Name,Vch No.,Debit,Credit
2024-01-01,Acme Traders,V-001,100,0
`
	rec := httptest.NewRecorder()
	h.HandleImport(rec, multipartUpload(t, csv, map[string]string{"credit_period": "10"}))

	require.Equal(t, http.StatusOK, rec.Code)

	got, err := transactions.NewRepository(db.Conn(), zerolog.Nop()).GetByVchNo("V-001")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", got.DueDate)
}

func TestHandler_Import_BadRequests(t *testing.T) {
	h, _, cleanup := setupImportHandler(t)
	defer cleanup()

	t.Run("missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("credit_period", "10"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		rec := httptest.NewRecorder()
		h.HandleImport(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative credit period", func(t *testing.T) {
		csv := "Client Name,Debit\nAcme,100\n"
		rec := httptest.NewRecorder()
		h.HandleImport(rec, multipartUpload(t, csv, map[string]string{"credit_period": "-1"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no client column", func(t *testing.T) {
		csv := "Date,Debit\n2024-01-01,100\n"
		rec := httptest.NewRecorder()
		h.HandleImport(rec, multipartUpload(t, csv, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "no client name column")
	})
}

func TestHandler_Import_FailureLeavesNoRows(t *testing.T) {
	h, db, cleanup := setupImportHandler(t)
	defer cleanup()

	csv := `Date,Client Name,Vch No.,Debit,Credit
2024-01-01,Acme Traders,V-001,100,0
2024-01-02,Zeta Mills,V-002,-5,0
`
	rec := httptest.NewRecorder()
	h.HandleImport(rec, multipartUpload(t, csv, nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, testhelpers.CountRows(t, db, "clients"))
	assert.Equal(t, 0, testhelpers.CountRows(t, db, "transactions"))
}
