package httpapi

import (
	"net/http"

	"github.com/riskibarqy/league-night/internal/interfaces/presenter"
	"github.com/riskibarqy/league-night/internal/usecase"
	"github.com/riskibarqy/league-night/pkg/wire"
)

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "CheckIn")
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.UserRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.checkInService.CheckIn(ctx, usecase.CheckInInput{NightRef: ref, PlayerID: req.UserID})
	if err != nil {
		h.fail(ctx, w, "check in failed", err, "night_id", ref.NightID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, presenter.CheckInResult(result))
}

func (h *Handler) UncheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "UncheckIn")
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.UserRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.checkInService.UncheckIn(ctx, usecase.CheckInInput{NightRef: ref, PlayerID: req.UserID})
	if err != nil {
		h.fail(ctx, w, "uncheck in failed", err, "night_id", ref.NightID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Summary(summary))
}
