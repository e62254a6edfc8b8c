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
)

type CheckInInput struct {
	NightRef
	PlayerID string
}

type CheckInResult struct {
	CheckIn checkin.CheckIn
	Summary night.Summary
}

type CheckInService struct {
	nightRepo   night.Repository
	checkInRepo checkin.Repository
	publisher   event.Publisher
	now         func() time.Time
}

func NewCheckInService(nightRepo night.Repository, checkInRepo checkin.Repository, publisher event.Publisher) *CheckInService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &CheckInService{
		nightRepo:   nightRepo,
		checkInRepo: checkInRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (s *CheckInService) CheckIn(ctx context.Context, input CheckInInput) (CheckInResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CheckInService.CheckIn", nightAttr(input.NightID))
	defer span.End()

	item, playerID, err := s.resolve(ctx, input)
	if err != nil {
		return CheckInResult{}, err
	}

	row := checkin.CheckIn{
		NightID:     item.ID,
		PlayerID:    playerID,
		CheckedInAt: s.now().UTC(),
	}
	// No pre-read: the store's unique key decides between racing check-ins.
	if err := s.checkInRepo.Insert(ctx, row); err != nil {
		if errors.Is(err, checkin.ErrDuplicate) {
			return CheckInResult{}, ErrAlreadyCheckedIn
		}
		return CheckInResult{}, fmt.Errorf("insert check-in: %w", err)
	}
	publish(ctx, s.publisher, item.ID, event.NameCheckIn, event.TypeCreate, row)

	summary, err := s.nightRepo.Summarize(ctx, item.ID)
	if err != nil {
		return CheckInResult{}, fmt.Errorf("summarize league night: %w", err)
	}
	return CheckInResult{CheckIn: row, Summary: summary}, nil
}

// UncheckIn removes the player's check-in and declines their pending requests.
func (s *CheckInService) UncheckIn(ctx context.Context, input CheckInInput) (night.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CheckInService.UncheckIn", nightAttr(input.NightID))
	defer span.End()

	item, playerID, err := s.resolve(ctx, input)
	if err != nil {
		return night.Summary{}, err
	}

	declined, found, err := s.checkInRepo.Delete(ctx, item.ID, playerID, s.now().UTC())
	switch {
	case errors.Is(err, checkin.ErrHeldByPartnership):
		return night.Summary{}, ErrPartnershipActive
	case err != nil:
		return night.Summary{}, fmt.Errorf("delete check-in: %w", err)
	case !found:
		return night.Summary{}, fmt.Errorf("%w: check-in for player=%s", ErrNotFound, playerID)
	}

	for _, req := range declined {
		publish(ctx, s.publisher, item.ID, event.NamePartnershipRequest, event.TypeUpdate, req)
	}
	publish(ctx, s.publisher, item.ID, event.NameCheckIn, event.TypeDelete, checkin.CheckIn{NightID: item.ID, PlayerID: playerID})

	summary, err := s.nightRepo.Summarize(ctx, item.ID)
	if err != nil {
		return night.Summary{}, fmt.Errorf("summarize league night: %w", err)
	}
	return summary, nil
}

func (s *CheckInService) ListCheckIns(ctx context.Context, ref NightRef) ([]checkin.CheckIn, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CheckInService.ListCheckIns", nightAttr(ref.NightID))
	defer span.End()

	item, err := loadNight(ctx, s.nightRepo, ref)
	if err != nil {
		return nil, err
	}
	items, err := s.checkInRepo.ListByNight(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return items, nil
}

func (s *CheckInService) resolve(ctx context.Context, input CheckInInput) (night.Night, string, error) {
	playerID := strings.TrimSpace(input.PlayerID)
	if playerID == "" {
		return night.Night{}, "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	item, err := loadNight(ctx, s.nightRepo, input.NightRef)
	if err != nil {
		return night.Night{}, "", err
	}
	if !item.IsOpen() {
		return night.Night{}, "", ErrNightClosed
	}
	return item, playerID, nil
}
