package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jakechorley/ward-rota/pkg/core/services"
	"github.com/jakechorley/ward-rota/pkg/db"
	"github.com/jakechorley/ward-rota/pkg/ingest"
)

type IngestRequest struct {
	Rows   []ingest.Row `json:"rows" validate:"required,min=1,dive"`
	DryRun bool         `json:"dryRun"`
}

type IngestResponse struct {
	BatchID   string                `json:"batchId"`
	Matched   int                   `json:"matched"`
	Unmatched []ingest.UnmatchedRow `json:"unmatched"`
	Persisted bool                  `json:"persisted"`
	Applied   bool                  `json:"applied"`
}

// Ingest resolves rows against the roster, stores them and folds them into
// the live skill sets. Readers are blocked until the whole batch is applied.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := services.ImportSkills(r.Context(), h.store, h.config, h.logger, req.Rows, db.SourceAPI, req.DryRun)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	resp := IngestResponse{
		BatchID:   result.BatchID,
		Matched:   result.Resolved.Matched,
		Unmatched: result.Resolved.Unmatched,
		Persisted: result.Persisted,
	}

	if !req.DryRun && result.Resolved.Matched > 0 {
		if err := ingest.Apply(h.sim.Skills, result.Resolved); err != nil {
			h.internalServerError(w, r, fmt.Errorf("failed to apply batch %s: %w", result.BatchID, err))
			return
		}
		resp.Applied = true

		h.logger.Info("Applied ingested skills",
			zap.String("batch_id", result.BatchID),
			zap.Int("matched", result.Resolved.Matched))
	}

	msg := fmt.Sprintf("%d rows matched", resp.Matched)
	if resp.Matched == 0 {
		msg = "no rows matched a rostered nurse"
	}
	h.successResponse(w, r, msg, resp)
}
