package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	idgen "github.com/riskibarqy/league-night/internal/platform/id"
)

type SendPartnershipRequestInput struct {
	NightRef
	RequesterID string
	RequestedID string
}

type RespondPartnershipRequestInput struct {
	NightRef
	RequestID string
	UserID    string
}

type RemovePartnershipInput struct {
	NightRef
	UserID string
}

type PartnershipService struct {
	nightRepo       night.Repository
	checkInRepo     checkin.Repository
	partnershipRepo partnership.Repository
	publisher       event.Publisher
	idGen           idgen.Generator
	now             func() time.Time
}

func NewPartnershipService(
	nightRepo night.Repository,
	checkInRepo checkin.Repository,
	partnershipRepo partnership.Repository,
	publisher event.Publisher,
	idGen idgen.Generator,
) *PartnershipService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &PartnershipService{
		nightRepo:       nightRepo,
		checkInRepo:     checkInRepo,
		partnershipRepo: partnershipRepo,
		publisher:       publisher,
		idGen:           idGen,
		now:             time.Now,
	}
}

func (s *PartnershipService) SendRequest(ctx context.Context, input SendPartnershipRequestInput) (partnership.Request, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PartnershipService.SendRequest", nightAttr(input.NightID))
	defer span.End()

	input.RequesterID = strings.TrimSpace(input.RequesterID)
	input.RequestedID = strings.TrimSpace(input.RequestedID)
	if input.RequesterID == "" || input.RequestedID == "" {
		return partnership.Request{}, fmt.Errorf("%w: requester and requested ids are required", ErrInvalidInput)
	}
	if input.RequesterID == input.RequestedID {
		return partnership.Request{}, fmt.Errorf("%w: cannot partner with yourself", ErrInvalidInput)
	}

	item, err := s.openNight(ctx, input.NightRef)
	if err != nil {
		return partnership.Request{}, err
	}

	for _, playerID := range []string{input.RequesterID, input.RequestedID} {
		_, checkedIn, err := s.checkInRepo.Get(ctx, item.ID, playerID)
		if err != nil {
			return partnership.Request{}, fmt.Errorf("get check-in: %w", err)
		}
		if !checkedIn {
			return partnership.Request{}, ErrNotCheckedIn
		}
	}
	for _, playerID := range []string{input.RequesterID, input.RequestedID} {
		_, partnered, err := s.partnershipRepo.GetActiveByPlayer(ctx, item.ID, playerID)
		if err != nil {
			return partnership.Request{}, fmt.Errorf("get active partnership: %w", err)
		}
		if partnered {
			return partnership.Request{}, ErrAlreadyPartnered
		}
	}

	requestID, err := s.idGen.NewID()
	if err != nil {
		return partnership.Request{}, fmt.Errorf("generate request id: %w", err)
	}
	now := s.now().UTC()
	req := partnership.Request{
		ID:          requestID,
		NightID:     item.ID,
		RequesterID: input.RequesterID,
		RequestedID: input.RequestedID,
		Status:      partnership.RequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.partnershipRepo.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, partnership.ErrDuplicatePending) {
			return partnership.Request{}, ErrDuplicateRequest
		}
		return partnership.Request{}, fmt.Errorf("create partnership request: %w", err)
	}

	publish(ctx, s.publisher, item.ID, event.NamePartnershipRequest, event.TypeCreate, req)
	return req, nil
}

// AcceptRequest lets the requested player accept. The request, the new
// partnership and the declines of both players' other requests commit together.
func (s *PartnershipService) AcceptRequest(ctx context.Context, input RespondPartnershipRequestInput) (partnership.Acceptance, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PartnershipService.AcceptRequest", nightAttr(input.NightID))
	defer span.End()

	item, req, userID, err := s.loadRequest(ctx, input)
	if err != nil {
		return partnership.Acceptance{}, err
	}
	if userID != req.RequestedID {
		return partnership.Acceptance{}, ErrForbidden
	}
	// Declined requests still go to the store so a lost race reports AlreadyPartnered.
	if req.Status == partnership.RequestAccepted {
		return partnership.Acceptance{}, ErrNotPending
	}

	partnershipID, err := s.idGen.NewID()
	if err != nil {
		return partnership.Acceptance{}, fmt.Errorf("generate partnership id: %w", err)
	}
	now := s.now().UTC()
	accepted, err := s.partnershipRepo.AcceptRequest(ctx, req.ID, partnership.Partnership{
		ID:        partnershipID,
		NightID:   item.ID,
		Player1ID: req.RequesterID,
		Player2ID: req.RequestedID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, now)
	if err != nil {
		return partnership.Acceptance{}, mapPartnershipStoreError(err, "accept partnership request")
	}

	publish(ctx, s.publisher, item.ID, event.NamePartnershipRequest, event.TypeUpdate, accepted.Request)
	for _, declined := range accepted.Declined {
		publish(ctx, s.publisher, item.ID, event.NamePartnershipRequest, event.TypeUpdate, declined)
	}
	publish(ctx, s.publisher, item.ID, event.NamePartnership, event.TypeCreate, accepted.Partnership)
	return accepted, nil
}

// RejectRequest declines a pending request; either party may do it.
func (s *PartnershipService) RejectRequest(ctx context.Context, input RespondPartnershipRequestInput) (partnership.Request, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PartnershipService.RejectRequest", nightAttr(input.NightID))
	defer span.End()

	item, req, userID, err := s.loadRequest(ctx, input)
	if err != nil {
		return partnership.Request{}, err
	}
	if !req.Involves(userID) {
		return partnership.Request{}, ErrForbidden
	}
	if req.Status != partnership.RequestPending {
		return partnership.Request{}, ErrNotPending
	}

	declined, err := s.partnershipRepo.DeclineRequest(ctx, req.ID, s.now().UTC())
	if err != nil {
		return partnership.Request{}, mapPartnershipStoreError(err, "decline partnership request")
	}

	publish(ctx, s.publisher, item.ID, event.NamePartnershipRequest, event.TypeUpdate, declined)
	return declined, nil
}

func (s *PartnershipService) RemovePartnership(ctx context.Context, input RemovePartnershipInput) (partnership.Partnership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PartnershipService.RemovePartnership", nightAttr(input.NightID))
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return partnership.Partnership{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	item, err := loadNight(ctx, s.nightRepo, input.NightRef)
	if err != nil {
		return partnership.Partnership{}, err
	}

	current, exists, err := s.partnershipRepo.GetActiveByPlayer(ctx, item.ID, userID)
	if err != nil {
		return partnership.Partnership{}, fmt.Errorf("get active partnership: %w", err)
	}
	if !exists {
		return partnership.Partnership{}, fmt.Errorf("%w: active partnership for player=%s", ErrNotFound, userID)
	}

	removed, err := s.partnershipRepo.Deactivate(ctx, current.ID, s.now().UTC())
	if err != nil {
		return partnership.Partnership{}, mapPartnershipStoreError(err, "deactivate partnership")
	}

	publish(ctx, s.publisher, item.ID, event.NamePartnership, event.TypeUpdate, removed)
	return removed, nil
}

func (s *PartnershipService) ListRequests(ctx context.Context, ref NightRef) ([]partnership.Request, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PartnershipService.ListRequests", nightAttr(ref.NightID))
	defer span.End()

	item, err := loadNight(ctx, s.nightRepo, ref)
	if err != nil {
		return nil, err
	}
	items, err := s.partnershipRepo.ListRequestsByNight(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list partnership requests: %w", err)
	}
	return items, nil
}

func (s *PartnershipService) ListPartnerships(ctx context.Context, ref NightRef) ([]partnership.Partnership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PartnershipService.ListPartnerships", nightAttr(ref.NightID))
	defer span.End()

	item, err := loadNight(ctx, s.nightRepo, ref)
	if err != nil {
		return nil, err
	}
	items, err := s.partnershipRepo.ListByNight(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list partnerships: %w", err)
	}
	return items, nil
}

func (s *PartnershipService) openNight(ctx context.Context, ref NightRef) (night.Night, error) {
	item, err := loadNight(ctx, s.nightRepo, ref)
	if err != nil {
		return night.Night{}, err
	}
	if !item.IsOpen() {
		return night.Night{}, ErrNightClosed
	}
	return item, nil
}

func (s *PartnershipService) loadRequest(ctx context.Context, input RespondPartnershipRequestInput) (night.Night, partnership.Request, string, error) {
	input.RequestID = strings.TrimSpace(input.RequestID)
	userID := strings.TrimSpace(input.UserID)
	if input.RequestID == "" {
		return night.Night{}, partnership.Request{}, "", fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}
	if userID == "" {
		return night.Night{}, partnership.Request{}, "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, err := s.openNight(ctx, input.NightRef)
	if err != nil {
		return night.Night{}, partnership.Request{}, "", err
	}

	req, exists, err := s.partnershipRepo.GetRequest(ctx, input.RequestID)
	if err != nil {
		return night.Night{}, partnership.Request{}, "", fmt.Errorf("get partnership request: %w", err)
	}
	if !exists || req.NightID != item.ID {
		return night.Night{}, partnership.Request{}, "", fmt.Errorf("%w: partnership request=%s", ErrNotFound, input.RequestID)
	}
	return item, req, userID, nil
}

func mapPartnershipStoreError(err error, op string) error {
	switch {
	case errors.Is(err, partnership.ErrRequestResolved):
		return ErrNotPending
	case errors.Is(err, partnership.ErrPlayerPartnered):
		return ErrAlreadyPartnered
	case errors.Is(err, partnership.ErrPlayerNotCheckedIn):
		return ErrNotCheckedIn
	case errors.Is(err, partnership.ErrDuplicatePending):
		return ErrDuplicateRequest
	case errors.Is(err, partnership.ErrOnOpenMatch):
		return ErrMatchInProgress
	case errors.Is(err, partnership.ErrNotActive):
		return fmt.Errorf("%w: active partnership", ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
