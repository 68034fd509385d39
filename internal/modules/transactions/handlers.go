package transactions

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler handles transaction HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new transactions handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "transactions").Logger(),
	}
}

// Routes mounts the transaction endpoints
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{vchNo}", h.HandleGet)
	r.Put("/{vchNo}", h.HandleUpdate)
	r.Delete("/{vchNo}", h.HandleDelete)
	r.Patch("/{vchNo}/status", h.HandleUpdateStatus)
}

// transactionRequest is the create/update payload. The client is referenced
// by ID and re-resolved on every write.
type transactionRequest struct {
	VchNo           string          `json:"vch_no"`
	TransactionDate string          `json:"transaction_date"`
	DueDate         string          `json:"due_date"`
	ClientID        int             `json:"client_id"`
	VchType         string          `json:"vch_type"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Status          string          `json:"status"`
}

// HandleList handles GET / - list with status/client_name/date filters
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status:     r.URL.Query().Get("status"),
		ClientName: r.URL.Query().Get("client_name"),
		DateFrom:   r.URL.Query().Get("date_from"),
		DateTo:     r.URL.Query().Get("date_to"),
	}

	if filter.Status != "" && !ValidStatus(filter.Status) {
		http.Error(w, "Invalid status filter", http.StatusBadRequest)
		return
	}
	for _, d := range []string{filter.DateFrom, filter.DateTo} {
		if d != "" && !isValidDate(d) {
			http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	result, err := h.repo.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		http.Error(w, "Failed to retrieve transactions", http.StatusInternalServerError)
		return
	}

	if result == nil {
		result = []Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleCreate handles POST / - create a transaction
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	existing, err := h.repo.GetByVchNo(req.VchNo)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check voucher number")
		http.Error(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Transaction with this voucher number already exists", http.StatusConflict)
		return
	}

	created, err := h.repo.Create(req.toTransaction())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// HandleGet handles GET /{vchNo}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	vchNo := chi.URLParam(r, "vchNo")

	t, err := h.repo.GetByVchNo(vchNo)
	if err != nil {
		h.log.Error().Err(err).Str("vch_no", vchNo).Msg("Failed to get transaction")
		http.Error(w, "Failed to retrieve transaction", http.StatusInternalServerError)
		return
	}
	if t == nil {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// HandleUpdate handles PUT /{vchNo} - full overwrite of an existing voucher
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	vchNo := chi.URLParam(r, "vchNo")

	existing, err := h.repo.GetByVchNo(vchNo)
	if err != nil {
		h.log.Error().Err(err).Str("vch_no", vchNo).Msg("Failed to get transaction")
		http.Error(w, "Failed to retrieve transaction", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.VchNo = vchNo

	if _, err := h.repo.Upsert(req.toTransaction()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.repo.GetByVchNo(vchNo)
	if err != nil || updated == nil {
		h.log.Error().Err(err).Str("vch_no", vchNo).Msg("Failed to reload transaction")
		http.Error(w, "Failed to retrieve transaction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// HandleDelete handles DELETE /{vchNo}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	vchNo := chi.URLParam(r, "vchNo")

	err := h.repo.Delete(vchNo)
	if err == sql.ErrNoRows {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("vch_no", vchNo).Msg("Failed to delete transaction")
		http.Error(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateStatus handles PATCH /{vchNo}/status - mark paid/unpaid
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	vchNo := chi.URLParam(r, "vchNo")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !ValidStatus(req.Status) {
		http.Error(w, "Status must be 'paid' or 'unpaid'", http.StatusBadRequest)
		return
	}

	err := h.repo.UpdateStatus(vchNo, req.Status)
	if err == sql.ErrNoRows {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("vch_no", vchNo).Msg("Failed to update status")
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"vch_no": vchNo, "status": req.Status})
}

func (req *transactionRequest) toTransaction() *Transaction {
	return &Transaction{
		VchNo:           req.VchNo,
		TransactionDate: req.TransactionDate,
		DueDate:         req.DueDate,
		ClientID:        req.ClientID,
		VchType:         req.VchType,
		Debit:           req.Debit,
		Credit:          req.Credit,
		Status:          req.Status,
	}
}

// isValidDate validates YYYY-MM-DD format
func isValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}
