package httpapi

import (
	"net/http"

	"github.com/riskibarqy/league-night/internal/interfaces/presenter"
	"github.com/riskibarqy/league-night/internal/usecase"
	"github.com/riskibarqy/league-night/pkg/wire"
)

func (h *Handler) SendPartnershipRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "SendPartnershipRequest")
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.PartnershipRequestBody
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.partnershipService.SendRequest(ctx, usecase.SendPartnershipRequestInput{
		NightRef:    ref,
		RequesterID: req.RequesterID,
		RequestedID: req.RequestedID,
	})
	if err != nil {
		h.fail(ctx, w, "send partnership request failed", err,
			"night_id", ref.NightID,
			"requester_id", req.RequesterID,
			"requested_id", req.RequestedID,
		)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, presenter.Request(item))
}

func (h *Handler) AcceptPartnershipRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "AcceptPartnershipRequest")
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.RespondRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	acceptance, err := h.partnershipService.AcceptRequest(ctx, usecase.RespondPartnershipRequestInput{
		NightRef:  ref,
		RequestID: req.RequestID,
		UserID:    req.UserID,
	})
	if err != nil {
		h.fail(ctx, w, "accept partnership request failed", err, "night_id", ref.NightID, "request_id", req.RequestID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Acceptance(acceptance))
}

func (h *Handler) RejectPartnershipRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "RejectPartnershipRequest")
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.RespondRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.partnershipService.RejectRequest(ctx, usecase.RespondPartnershipRequestInput{
		NightRef:  ref,
		RequestID: req.RequestID,
		UserID:    req.UserID,
	})
	if err != nil {
		h.fail(ctx, w, "reject partnership request failed", err, "night_id", ref.NightID, "request_id", req.RequestID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Request(item))
}

func (h *Handler) RemovePartnership(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "RemovePartnership")
	defer span.End()

	ref := nightRefFromPath(r)
	var req wire.UserRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.partnershipService.RemovePartnership(ctx, usecase.RemovePartnershipInput{NightRef: ref, UserID: req.UserID})
	if err != nil {
		h.fail(ctx, w, "remove partnership failed", err, "night_id", ref.NightID, "user_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.Partnership(item))
}
