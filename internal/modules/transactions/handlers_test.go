package transactions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/payment-reminder/internal/modules/clients"
	testhelpers "github.com/creditdesk/payment-reminder/internal/testing"
)

func setupHandler(t *testing.T) (*chi.Mux, *Repository, int, func()) {
	db, cleanup := testhelpers.NewTestDB(t)

	client, err := clients.NewRepository(db.Conn(), zerolog.Nop()).Create(
		&clients.Client{ClientName: "Acme Traders", CreditPeriod: 30},
	)
	require.NoError(t, err)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	router := chi.NewRouter()
	router.Route("/transactions", func(r chi.Router) {
		NewHandler(repo, zerolog.Nop()).Routes(r)
	})
	return router, repo, client.ID, cleanup
}

func TestHandler_Create(t *testing.T) {
	router, _, clientID, cleanup := setupHandler(t)
	defer cleanup()

	body := `{"vch_no": "V-001", "transaction_date": "2024-01-01", "due_date": "2024-01-31",
	          "client_id": ` + strconv.Itoa(clientID) + `, "vch_type": "Sales", "debit": "1500.50", "credit": "0"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "V-001", created.VchNo)
	assert.Equal(t, StatusUnpaid, created.Status)
}

func TestHandler_Create_DuplicateVoucher(t *testing.T) {
	router, repo, clientID, cleanup := setupHandler(t)
	defer cleanup()

	_, err := repo.Create(newTransaction("V-001", clientID, "100"))
	require.NoError(t, err)

	body := `{"vch_no": "V-001", "transaction_date": "2024-01-01", "due_date": "2024-01-31",
	          "client_id": ` + strconv.Itoa(clientID) + `, "debit": "100", "credit": "0"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_Create_InvalidDates(t *testing.T) {
	router, _, clientID, cleanup := setupHandler(t)
	defer cleanup()

	// Due date before transaction date is rejected
	body := `{"vch_no": "V-001", "transaction_date": "2024-01-31", "due_date": "2024-01-01",
	          "client_id": ` + strconv.Itoa(clientID) + `, "debit": "100", "credit": "0"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "precedes")
}

func TestHandler_List_InvalidFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad status", "?status=pending"},
		{"bad date_from", "?date_from=01-01-2024"},
		{"bad date_to", "?date_to=tomorrow"},
	}

	router, _, _, cleanup := setupHandler(t)
	defer cleanup()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/transactions/"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	router, repo, clientID, cleanup := setupHandler(t)
	defer cleanup()

	_, err := repo.Create(newTransaction("V-001", clientID, "100"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/transactions/V-001/status", strings.NewReader(`{"status": "paid"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "V-001", resp["vch_no"])
	assert.Equal(t, "paid", resp["status"])

	got, err := repo.GetByVchNo("V-001")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)
}

func TestHandler_UpdateStatus_Invalid(t *testing.T) {
	router, repo, clientID, cleanup := setupHandler(t)
	defer cleanup()

	_, err := repo.Create(newTransaction("V-001", clientID, "100"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/transactions/V-001/status", strings.NewReader(`{"status": "pending"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/transactions/V-404/status", strings.NewReader(`{"status": "paid"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	router, repo, clientID, cleanup := setupHandler(t)
	defer cleanup()

	_, err := repo.Create(newTransaction("V-001", clientID, "100"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/transactions/V-001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/transactions/V-001", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

