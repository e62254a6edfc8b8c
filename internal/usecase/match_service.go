package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	idgen "github.com/riskibarqy/league-night/internal/platform/id"
	"github.com/riskibarqy/league-night/internal/platform/logging"
)

type CreateMatchesInput struct {
	NightRef
	UserID string
}

type AdminMatchInput struct {
	NightRef
	MatchID string
	UserID  string
}

type MatchService struct {
	nightRepo       night.Repository
	partnershipRepo partnership.Repository
	matchRepo       match.Repository
	publisher       event.Publisher
	admins          Admins
	idGen           idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewMatchService(
	nightRepo night.Repository,
	partnershipRepo partnership.Repository,
	matchRepo match.Repository,
	publisher event.Publisher,
	admins Admins,
	idGen idgen.Generator,
	logger *logging.Logger,
) *MatchService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		nightRepo:       nightRepo,
		partnershipRepo: partnershipRepo,
		matchRepo:       matchRepo,
		publisher:       publisher,
		admins:          admins,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// CreateMatches assigns queued partnerships to free courts in arrival order.
// Partnerships left over stay queued for the next call.
func (s *MatchService) CreateMatches(ctx context.Context, input CreateMatchesInput) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateMatches", nightAttr(input.NightID))
	defer span.End()

	if !s.admins.Has(input.UserID) {
		return nil, ErrForbidden
	}
	item, err := loadNight(ctx, s.nightRepo, input.NightRef)
	if err != nil {
		return nil, err
	}
	if item.Status != night.StatusActive {
		return nil, ErrNightNotActive
	}

	partnerships, err := s.partnershipRepo.ListByNight(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list partnerships: %w", err)
	}
	existing, err := s.matchRepo.ListByNight(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	busy := make(map[string]struct{})
	occupied := make(map[string]struct{})
	for _, m := range existing {
		if !m.IsOpen() {
			continue
		}
		busy[m.Partnership1ID] = struct{}{}
		busy[m.Partnership2ID] = struct{}{}
		occupied[m.CourtLabel] = struct{}{}
	}

	queue := queuedPartnerships(partnerships, busy)
	courts := freeCourts(item, occupied)
	pairs := match.PairPartnerships(queue, match.BuildHistory(existing), len(courts))
	if len(pairs) == 0 {
		return []match.Match{}, nil
	}

	now := s.now().UTC()
	created := make([]match.Match, 0, len(pairs))
	for i, pair := range pairs {
		matchID, err := s.idGen.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate match id: %w", err)
		}
		if pair.Repeat {
			s.logger.WarnContext(ctx, "pairing repeat opponents, no fresh pairing left",
				"night_id", item.ID,
				"partnership1_id", pair.Partnership1ID,
				"partnership2_id", pair.Partnership2ID,
			)
		}
		created = append(created, match.Match{
			ID:             matchID,
			NightID:        item.ID,
			Partnership1ID: pair.Partnership1ID,
			Partnership2ID: pair.Partnership2ID,
			CourtLabel:     courts[i],
			Status:         match.StatusActive,
			ScoreStatus:    match.ScoreNone,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := s.matchRepo.CreateBatch(ctx, created); err != nil {
		switch {
		case errors.Is(err, match.ErrPartnershipBusy):
			return nil, ErrMatchInProgress
		case errors.Is(err, match.ErrCourtBusy):
			return nil, errors.Wrap(ErrConflict, "court already in use")
		}
		return nil, fmt.Errorf("create matches: %w", err)
	}

	for _, m := range created {
		publish(ctx, s.publisher, item.ID, event.NameMatch, event.TypeCreate, m)
	}
	s.logger.InfoContext(ctx, "matches created", "night_id", item.ID, "count", len(created), "queued", len(queue)-2*len(created))
	return created, nil
}

func (s *MatchService) ListMatches(ctx context.Context, ref NightRef) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListMatches", nightAttr(ref.NightID))
	defer span.End()

	item, err := loadNight(ctx, s.nightRepo, ref)
	if err != nil {
		return nil, err
	}
	items, err := s.matchRepo.ListByNight(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

// CancelMatch voids an open match; both partnerships go back to the queue.
func (s *MatchService) CancelMatch(ctx context.Context, input AdminMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CancelMatch", nightAttr(input.NightID))
	defer span.End()

	if !s.admins.Has(input.UserID) {
		return match.Match{}, ErrForbidden
	}
	_, current, err := loadMatch(ctx, s.nightRepo, s.matchRepo, input.NightRef, input.MatchID)
	if err != nil {
		return match.Match{}, err
	}

	next, err := match.Abandon(current, s.now().UTC())
	if err != nil {
		return match.Match{}, mapScoreError(err)
	}
	return saveMatch(ctx, s.matchRepo, s.publisher, next)
}

func queuedPartnerships(items []partnership.Partnership, busy map[string]struct{}) []string {
	active := make([]partnership.Partnership, 0, len(items))
	for _, p := range items {
		if !p.IsActive {
			continue
		}
		if _, onCourt := busy[p.ID]; onCourt {
			continue
		}
		active = append(active, p)
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	out := make([]string, 0, len(active))
	for _, p := range active {
		out = append(out, p.ID)
	}
	return out
}

func freeCourts(item night.Night, occupied map[string]struct{}) []string {
	out := make([]string, 0, item.CourtsAvailable)
	for slot := 0; slot < item.CourtsAvailable; slot++ {
		label := item.CourtLabel(slot)
		if _, taken := occupied[label]; taken {
			continue
		}
		out = append(out, label)
	}
	return out
}

func loadMatch(ctx context.Context, nightRepo night.Repository, matchRepo match.Repository, ref NightRef, matchID string) (night.Night, match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return night.Night{}, match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	item, err := loadNight(ctx, nightRepo, ref)
	if err != nil {
		return night.Night{}, match.Match{}, err
	}

	m, exists, err := matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return night.Night{}, match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists || m.NightID != item.ID {
		return night.Night{}, match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, m, nil
}

// saveMatch writes next over the version it was derived from.
func saveMatch(ctx context.Context, repo match.Repository, publisher event.Publisher, next match.Match) (match.Match, error) {
	stored, err := repo.Update(ctx, next)
	if err != nil {
		if errors.Is(err, match.ErrVersionConflict) {
			return match.Match{}, ErrStaleWrite
		}
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	publish(ctx, publisher, stored.NightID, event.NameMatch, event.TypeUpdate, stored)
	return stored, nil
}

func mapScoreError(err error) error {
	switch {
	case errors.Is(err, match.ErrNotParticipant):
		return ErrNotParticipant
	case errors.Is(err, match.ErrSubmitterResponded), errors.Is(err, match.ErrNotSubmitter):
		return ErrForbidden
	case errors.Is(err, match.ErrScorePending):
		return ErrAlreadyPending
	case errors.Is(err, match.ErrNoPendingScore):
		return ErrScoreNotPending
	case errors.Is(err, match.ErrNotOpen), errors.Is(err, match.ErrCancelled):
		return ErrMatchClosed
	case errors.Is(err, match.ErrInvalidScore):
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	default:
		return err
	}
}
