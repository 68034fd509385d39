package importer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/creditdesk/payment-reminder/internal/events"
)

// maxUploadBytes caps statement uploads at 10MB
const maxUploadBytes = 10 << 20

// Handler handles statement upload requests
type Handler struct {
	reconciler          *Reconciler
	eventManager        *events.Manager
	defaultCreditPeriod int
	headerOffset        int
	log                 zerolog.Logger
}

// NewHandler creates a new import handler
func NewHandler(reconciler *Reconciler, eventManager *events.Manager, defaultCreditPeriod, headerOffset int, log zerolog.Logger) *Handler {
	return &Handler{
		reconciler:          reconciler,
		eventManager:        eventManager,
		defaultCreditPeriod: defaultCreditPeriod,
		headerOffset:        headerOffset,
		log:                 log.With().Str("handler", "importer").Logger(),
	}
}

// HandleImport handles POST /api/import - multipart statement upload.
// Responds with {clients_created, transactions_created, message} on
// success or {error} on failure; a failure never leaves partial rows.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	creditPeriod := h.defaultCreditPeriod
	if raw := r.FormValue("credit_period"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "credit_period must be a non-negative integer")
			return
		}
		creditPeriod = parsed
	}

	rows, err := ReadStatement(file, h.headerOffset)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to parse statement upload")
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.reconciler.Reconcile(rows, creditPeriod)
	if err != nil {
		h.log.Error().Err(err).Msg("Import failed, rolled back")
		h.eventManager.Emit(events.ImportFailed, "importer", map[string]interface{}{
			"error": err.Error(),
			"rows":  len(rows),
		})
		h.writeError(w, http.StatusInternalServerError, "import failed, no rows were saved")
		return
	}

	h.eventManager.Emit(events.ImportCompleted, "importer", map[string]interface{}{
		"clients_created":      summary.ClientsCreated,
		"transactions_created": summary.TransactionsCreated,
		"rows":                 len(rows),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"clients_created":      summary.ClientsCreated,
		"transactions_created": summary.TransactionsCreated,
		"message": fmt.Sprintf("Imported %d new transactions (%d new clients)",
			summary.TransactionsCreated, summary.ClientsCreated),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
