package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/core/services"
)

type NurseSkills struct {
	Nurse    string       `json:"nurse"`
	Team     string       `json:"team,omitempty"`
	Wards    []model.Ward `json:"wards"`
	Veterans []model.Ward `json:"veteranWards"`
}

type NurseSchedule struct {
	Nurse   string           `json:"nurse"`
	Entries []rotation.Entry `json:"entries"`
}

type CoverageResponse struct {
	*services.CoverageReport
	WardRatios map[model.Ward]float64 `json:"wardRatios"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	runID := h.sim.Run.ID
	h.mu.RUnlock()

	h.successResponse(w, r, "ok", map[string]string{"runId": runID})
}

// GetSchedule lists every entry of the run, optionally filtered by ?team=
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")

	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := make([]rotation.Entry, 0, len(h.sim.Schedule))
	for _, e := range h.sim.Schedule {
		if team == "" || e.Team == team {
			entries = append(entries, e)
		}
	}

	h.successResponse(w, r, "schedule", entries)
}

func (h *Handler) GetNurseSchedule(w http.ResponseWriter, r *http.Request) {
	nurse := chi.URLParam(r, "nurse")

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.nurses[nurse]; !ok {
		h.notFound(w, r, fmt.Sprintf("nurse %q is not on the roster", nurse))
		return
	}

	entries := h.sim.Schedule.ForNurse(nurse)
	if entries == nil {
		entries = rotation.Schedule{}
	}

	h.successResponse(w, r, "schedule", NurseSchedule{Nurse: nurse, Entries: entries})
}

func (h *Handler) GetAllSkills(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	all := h.sim.Skills.SnapshotAll()
	out := make([]NurseSkills, 0, len(h.sim.Roster))
	for _, n := range h.sim.Roster {
		out = append(out, h.nurseSkills(n, all[n.Name]))
	}

	h.successResponse(w, r, "skills", out)
}

func (h *Handler) GetNurseSkills(w http.ResponseWriter, r *http.Request) {
	nurse := chi.URLParam(r, "nurse")

	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nurses[nurse]
	if !ok {
		h.notFound(w, r, fmt.Sprintf("nurse %q is not on the roster", nurse))
		return
	}

	h.successResponse(w, r, "skills", h.nurseSkills(n, h.sim.Skills.Snapshot(n.Name)))
}

// nurseSkills must be called with the read lock held
func (h *Handler) nurseSkills(n model.Nurse, known model.WardSet) NurseSkills {
	wards := known.Sorted()
	veterans := make([]model.Ward, 0)
	for _, w := range wards {
		if h.sim.Skills.IsVeteran(n.Name, w) {
			veterans = append(veterans, w)
		}
	}
	if wards == nil {
		wards = []model.Ward{}
	}
	return NurseSkills{Nurse: n.Name, Team: h.teams[n.Name], Wards: wards, Veterans: veterans}
}

func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ward := r.URL.Query().Get("ward")
	if ward == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "query parameter ward is required")
		return
	}

	asOf, err := parseAsOf(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	recs, err := services.RecommendStaff(h.sim, h.logger, model.Ward(ward), asOf)
	if err != nil {
		h.queryError(w, r, err)
		return
	}

	msg := "recommendations"
	if len(recs) == 0 {
		msg = "no qualified staff"
	}
	h.successResponse(w, r, msg, recs)
}

func (h *Handler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	report, err := services.BuildCoverageReport(h.sim, h.logger, asOf)
	if err != nil {
		h.queryError(w, r, err)
		return
	}

	ratios := make(map[model.Ward]float64, len(report.Coverage.Wards))
	for _, ward := range report.Coverage.Wards {
		ratios[ward] = report.Coverage.WardRatio(ward)
	}

	h.successResponse(w, r, "coverage", CoverageResponse{CoverageReport: report, WardRatios: ratios})
}

func (h *Handler) queryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, rotation.ErrInvalidParameter) {
		h.badRequest(w, r, err)
		return
	}
	h.internalServerError(w, r, err)
}

// parseAsOf reads the optional ?asOf= period index
func parseAsOf(r *http.Request) (*int, error) {
	raw := r.URL.Query().Get("asOf")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("asOf must be an integer period index, got %q", raw)
	}
	return &v, nil
}
