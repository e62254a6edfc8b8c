package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/interfaces/presenter"
	"github.com/riskibarqy/league-night/internal/usecase"
	"github.com/riskibarqy/league-night/pkg/wire"
)

func (h *Handler) CreateNight(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "CreateNight")
	defer span.End()

	leagueID := r.PathValue("leagueId")
	var req wire.CreateNightRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := time.Parse(wire.DateLayout, req.Date)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: date must be YYYY-MM-DD", usecase.ErrInvalidInput))
		return
	}

	item, err := h.nightService.CreateNight(ctx, usecase.CreateNightInput{
		LeagueID:        leagueID,
		UserID:          req.UserID,
		Date:            date,
		CourtsAvailable: req.CourtsAvailable,
		CourtLabels:     req.CourtLabels,
	})
	if err != nil {
		h.fail(ctx, w, "create night failed", err, "league_id", leagueID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, presenter.Night(item))
}

// GetNight returns the snapshot: the night, its computed counters and every row.
func (h *Handler) GetNight(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "GetNight")
	defer span.End()

	ref := nightRefFromPath(r)
	snapshot, err := h.nightService.GetSnapshot(ctx, ref)
	if err != nil {
		h.fail(ctx, w, "get night snapshot failed", err, "night_id", ref.NightID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Snapshot(snapshot))
}

func (h *Handler) StartNight(w http.ResponseWriter, r *http.Request) {
	h.nightAction(w, r, "StartNight", h.nightService.StartNight)
}

func (h *Handler) EndNight(w http.ResponseWriter, r *http.Request) {
	h.nightAction(w, r, "EndNight", h.nightService.EndNight)
}

func (h *Handler) nightAction(w http.ResponseWriter, r *http.Request, spanName string, action func(context.Context, usecase.NightActionInput) (night.Night, error)) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.UserRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := action(ctx, usecase.NightActionInput{NightRef: ref, UserID: req.UserID})
	if err != nil {
		h.fail(ctx, w, "night transition failed", err, "night_id", ref.NightID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Night(item))
}

// Realtime upgrades to the night's websocket feed once the night is known.
func (h *Handler) Realtime(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "Realtime")
	ref := nightRefFromPath(r)
	item, err := h.nightService.GetNight(ctx, ref)
	span.End()
	if err != nil {
		h.fail(ctx, w, "realtime subscribe rejected", err, "night_id", ref.NightID)
		return
	}

	h.realtime.Serve(w, r, item.ID)
}
