package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/interfaces/presenter"
	"github.com/riskibarqy/league-night/internal/usecase"
	"github.com/riskibarqy/league-night/pkg/wire"
)

func (h *Handler) CreateMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "CreateMatches")
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.UserRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.matchService.CreateMatches(ctx, usecase.CreateMatchesInput{NightRef: ref, UserID: req.UserID})
	if err != nil {
		h.fail(ctx, w, "create matches failed", err, "night_id", ref.NightID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, presenter.Matches(items))
}

func (h *Handler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "CancelMatch")
	defer span.End()

	ref := nightRefFromPath(r)
	matchID := r.PathValue("matchId")
	var req wire.UserRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.CancelMatch(ctx, usecase.AdminMatchInput{NightRef: ref, MatchID: matchID, UserID: req.UserID})
	if err != nil {
		h.fail(ctx, w, "cancel match failed", err, "night_id", ref.NightID, "match_id", matchID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Match(item))
}

func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "SubmitScore")
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.SubmitScoreRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.scoreService.SubmitScore(ctx, usecase.SubmitScoreInput{
		NightRef:   ref,
		MatchID:    req.MatchID,
		UserID:     req.UserID,
		Team1Score: *req.Team1Score,
		Team2Score: *req.Team2Score,
	})
	if err != nil {
		h.fail(ctx, w, "submit score failed", err, "night_id", ref.NightID, "match_id", req.MatchID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Match(item))
}

func (h *Handler) ConfirmScore(w http.ResponseWriter, r *http.Request) {
	h.scoreAction(w, r, "ConfirmScore", h.scoreService.ConfirmScore)
}

func (h *Handler) DisputeScore(w http.ResponseWriter, r *http.Request) {
	h.scoreAction(w, r, "DisputeScore", h.scoreService.DisputeScore)
}

func (h *Handler) CancelScore(w http.ResponseWriter, r *http.Request) {
	h.scoreAction(w, r, "CancelScore", h.scoreService.CancelScore)
}

func (h *Handler) scoreAction(w http.ResponseWriter, r *http.Request, spanName string, action func(context.Context, usecase.ScoreActionInput) (match.Match, error)) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.ScoreActionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := action(ctx, usecase.ScoreActionInput{NightRef: ref, MatchID: req.MatchID, UserID: req.UserID})
	if err != nil {
		h.fail(ctx, w, "score action failed", err, "night_id", ref.NightID, "match_id", req.MatchID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Match(item))
}

func (h *Handler) OverrideScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "OverrideScore")
	defer span.End()

	ref := nightRefFromPath(r)
	matchID := r.PathValue("matchId")
	var req wire.OverrideScoreRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.scoreService.OverrideMatchScore(ctx, usecase.OverrideScoreInput{
		NightRef:   ref,
		MatchID:    matchID,
		UserID:     req.UserID,
		Team1Score: *req.Team1Score,
		Team2Score: *req.Team2Score,
	})
	if err != nil {
		h.fail(ctx, w, "override score failed", err, "night_id", ref.NightID, "match_id", matchID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Match(item))
}
