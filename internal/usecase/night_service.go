package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	idgen "github.com/riskibarqy/league-night/internal/platform/id"
)

type NightRef struct {
	LeagueID string
	NightID  string
}

func (r NightRef) normalize() (NightRef, error) {
	r.LeagueID = strings.TrimSpace(r.LeagueID)
	r.NightID = strings.TrimSpace(r.NightID)
	if r.LeagueID == "" {
		return r, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if r.NightID == "" {
		return r, fmt.Errorf("%w: night id is required", ErrInvalidInput)
	}
	return r, nil
}

type CreateNightInput struct {
	LeagueID        string
	UserID          string
	Date            time.Time
	CourtsAvailable int
	CourtLabels     []string
}

type NightActionInput struct {
	NightRef
	UserID string
}

// Snapshot is everything a client needs to rebuild its view of one night.
type Snapshot struct {
	Night        night.Night
	Summary      night.Summary
	CheckIns     []checkin.CheckIn
	Requests     []partnership.Request
	Partnerships []partnership.Partnership
	Matches      []match.Match
}

type NightService struct {
	nightRepo night.Repository
	publisher event.Publisher
	admins    Admins
	idGen     idgen.Generator
	now       func() time.Time
}

func NewNightService(nightRepo night.Repository, publisher event.Publisher, admins Admins, idGen idgen.Generator) *NightService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &NightService{
		nightRepo: nightRepo,
		publisher: publisher,
		admins:    admins,
		idGen:     idGen,
		now:       time.Now,
	}
}

func (s *NightService) CreateNight(ctx context.Context, input CreateNightInput) (night.Night, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NightService.CreateNight")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.LeagueID == "" {
		return night.Night{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if !s.admins.Has(input.UserID) {
		return night.Night{}, ErrForbidden
	}
	if input.Date.IsZero() {
		return night.Night{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if input.CourtsAvailable <= 0 {
		return night.Night{}, fmt.Errorf("%w: courts available must be > 0", ErrInvalidInput)
	}
	if len(input.CourtLabels) > input.CourtsAvailable {
		return night.Night{}, fmt.Errorf("%w: more court labels than courts", ErrInvalidInput)
	}

	nightID, err := s.idGen.NewID()
	if err != nil {
		return night.Night{}, fmt.Errorf("generate night id: %w", err)
	}

	labels := make([]string, 0, len(input.CourtLabels))
	for _, label := range input.CourtLabels {
		labels = append(labels, strings.TrimSpace(label))
	}

	now := s.now().UTC()
	item := night.Night{
		ID:              nightID,
		LeagueID:        input.LeagueID,
		Date:            input.Date.UTC(),
		Status:          night.StatusScheduled,
		CourtsAvailable: input.CourtsAvailable,
		CourtLabels:     labels,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if label, dup := item.DuplicateCourt(); dup {
		return night.Night{}, fmt.Errorf("%w: court label %q is used twice", ErrInvalidInput, label)
	}
	if err := s.nightRepo.Create(ctx, item); err != nil {
		return night.Night{}, fmt.Errorf("create league night: %w", err)
	}

	return item, nil
}

func (s *NightService) GetNight(ctx context.Context, ref NightRef) (night.Night, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NightService.GetNight", nightAttr(ref.NightID))
	defer span.End()

	return loadNight(ctx, s.nightRepo, ref)
}

// GetSnapshot reads the night and all of its rows in one store unit, so a
// concurrent multi-row change is seen whole or not at all. Counters come from
// the same read.
func (s *NightService) GetSnapshot(ctx context.Context, ref NightRef) (Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NightService.GetSnapshot", nightAttr(ref.NightID))
	defer span.End()

	ref, err := ref.normalize()
	if err != nil {
		return Snapshot{}, err
	}
	ledger, exists, err := s.nightRepo.ReadLedger(ctx, ref.NightID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read league night ledger: %w", err)
	}
	if !exists || ledger.Night.LeagueID != ref.LeagueID {
		return Snapshot{}, fmt.Errorf("%w: league night=%s", ErrNotFound, ref.NightID)
	}

	return Snapshot{
		Night:        ledger.Night,
		Summary:      ledger.Summary(),
		CheckIns:     ledger.CheckIns,
		Requests:     ledger.Requests,
		Partnerships: ledger.Partnerships,
		Matches:      ledger.Matches,
	}, nil
}

func (s *NightService) StartNight(ctx context.Context, input NightActionInput) (night.Night, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NightService.StartNight", nightAttr(input.NightID))
	defer span.End()

	return s.transition(ctx, input, night.StatusActive)
}

// EndNight completes the night and declines every request still pending in
// the same store unit.
func (s *NightService) EndNight(ctx context.Context, input NightActionInput) (night.Night, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NightService.EndNight", nightAttr(input.NightID))
	defer span.End()

	current, err := s.authorizeTransition(ctx, input, night.StatusCompleted)
	if err != nil {
		return night.Night{}, err
	}

	updated, declined, err := s.nightRepo.Complete(ctx, current.ID, s.now().UTC())
	if err != nil {
		if errors.Is(err, night.ErrStatusChanged) {
			return night.Night{}, errors.Wrap(ErrConflict, "league night status changed")
		}
		return night.Night{}, fmt.Errorf("complete league night: %w", err)
	}

	publish(ctx, s.publisher, updated.ID, event.NameNight, event.TypeUpdate, updated)
	for _, req := range declined {
		publish(ctx, s.publisher, updated.ID, event.NamePartnershipRequest, event.TypeUpdate, req)
	}
	return updated, nil
}

func (s *NightService) transition(ctx context.Context, input NightActionInput, to night.Status) (night.Night, error) {
	current, err := s.authorizeTransition(ctx, input, to)
	if err != nil {
		return night.Night{}, err
	}

	updated, err := s.nightRepo.UpdateStatus(ctx, current.ID, current.Status, to, s.now().UTC())
	if err != nil {
		if errors.Is(err, night.ErrStatusChanged) {
			return night.Night{}, errors.Wrap(ErrConflict, "league night status changed")
		}
		return night.Night{}, fmt.Errorf("update league night status: %w", err)
	}

	publish(ctx, s.publisher, updated.ID, event.NameNight, event.TypeUpdate, updated)
	return updated, nil
}

// authorizeTransition loads the night for an admin and checks that to is its next status.
func (s *NightService) authorizeTransition(ctx context.Context, input NightActionInput, to night.Status) (night.Night, error) {
	ref, err := input.NightRef.normalize()
	if err != nil {
		return night.Night{}, err
	}
	if !s.admins.Has(input.UserID) {
		return night.Night{}, ErrForbidden
	}

	current, err := loadNight(ctx, s.nightRepo, ref)
	if err != nil {
		return night.Night{}, err
	}
	if !night.CanTransition(current.Status, to) {
		switch {
		case current.Status == night.StatusCompleted:
			return night.Night{}, ErrNightClosed
		case to == night.StatusCompleted:
			return night.Night{}, ErrNightNotActive
		default:
			return night.Night{}, errors.Wrap(ErrConflict, "league night already started")
		}
	}
	return current, nil
}

// loadNight resolves a night and hides it when it belongs to another league.
func loadNight(ctx context.Context, repo night.Repository, ref NightRef) (night.Night, error) {
	ref, err := ref.normalize()
	if err != nil {
		return night.Night{}, err
	}

	item, exists, err := repo.GetByID(ctx, ref.NightID)
	if err != nil {
		return night.Night{}, fmt.Errorf("get league night: %w", err)
	}
	if !exists || item.LeagueID != ref.LeagueID {
		return night.Night{}, fmt.Errorf("%w: league night=%s", ErrNotFound, ref.NightID)
	}
	return item, nil
}

func publish(ctx context.Context, publisher event.Publisher, nightID string, name event.Name, typ event.Type, payload any) {
	publisher.Publish(ctx, event.Message{
		NightID: nightID,
		Event:   name,
		Type:    typ,
		Payload: payload,
	})
}
