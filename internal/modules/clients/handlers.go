package clients

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles client HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new clients handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "clients").Logger(),
	}
}

// Routes mounts the client endpoints
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

// clientRequest is the create/update payload
type clientRequest struct {
	ClientName   string `json:"client_name"`
	CreditPeriod int    `json:"credit_period"`
}

// HandleList handles GET / - list clients, optional client_name filter
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	nameFilter := r.URL.Query().Get("client_name")

	result, err := h.repo.List(nameFilter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list clients")
		http.Error(w, "Failed to retrieve clients", http.StatusInternalServerError)
		return
	}

	if result == nil {
		result = []Client{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleCreate handles POST / - create a client
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.ClientName == "" {
		http.Error(w, "client_name is required", http.StatusBadRequest)
		return
	}
	if req.CreditPeriod < 0 {
		http.Error(w, "credit_period must be non-negative", http.StatusBadRequest)
		return
	}

	existing, err := h.repo.GetByName(req.ClientName)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check client name")
		http.Error(w, "Failed to create client", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Client with this name already exists", http.StatusConflict)
		return
	}

	created, err := h.repo.Create(&Client{ClientName: req.ClientName, CreditPeriod: req.CreditPeriod})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create client")
		http.Error(w, "Failed to create client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// HandleGet handles GET /{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	client, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int("id", id).Msg("Failed to get client")
		http.Error(w, "Failed to retrieve client", http.StatusInternalServerError)
		return
	}
	if client == nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(client)
}

// HandleUpdate handles PUT /{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.ClientName == "" {
		http.Error(w, "client_name is required", http.StatusBadRequest)
		return
	}
	if req.CreditPeriod < 0 {
		http.Error(w, "credit_period must be non-negative", http.StatusBadRequest)
		return
	}

	err := h.repo.Update(&Client{ID: id, ClientName: req.ClientName, CreditPeriod: req.CreditPeriod})
	if err == sql.ErrNoRows {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int("id", id).Msg("Failed to update client")
		http.Error(w, "Failed to update client", http.StatusInternalServerError)
		return
	}

	updated, err := h.repo.GetByID(id)
	if err != nil || updated == nil {
		h.log.Error().Err(err).Int("id", id).Msg("Failed to reload client")
		http.Error(w, "Failed to retrieve client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// HandleDelete handles DELETE /{id} - removes the client and its transactions
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	err := h.repo.Delete(id)
	if err == sql.ErrNoRows {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int("id", id).Msg("Failed to delete client")
		http.Error(w, "Failed to delete client", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
