package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

type SubmitScoreInput struct {
	NightRef
	MatchID    string
	UserID     string
	Team1Score int
	Team2Score int
}

type ScoreActionInput struct {
	NightRef
	MatchID string
	UserID  string
}

type OverrideScoreInput struct {
	NightRef
	MatchID    string
	UserID     string
	Team1Score int
	Team2Score int
}

// ScoreService runs the two-party score handshake. Players act through the
// partnership they hold on the match; admins may override.
type ScoreService struct {
	nightRepo       night.Repository
	partnershipRepo partnership.Repository
	matchRepo       match.Repository
	publisher       event.Publisher
	admins          Admins
	now             func() time.Time
}

func NewScoreService(
	nightRepo night.Repository,
	partnershipRepo partnership.Repository,
	matchRepo match.Repository,
	publisher event.Publisher,
	admins Admins,
) *ScoreService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &ScoreService{
		nightRepo:       nightRepo,
		partnershipRepo: partnershipRepo,
		matchRepo:       matchRepo,
		publisher:       publisher,
		admins:          admins,
		now:             time.Now,
	}
}

func (s *ScoreService) SubmitScore(ctx context.Context, input SubmitScoreInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.SubmitScore", nightAttr(input.NightID))
	defer span.End()

	m, partnershipID, err := s.resolveActor(ctx, input.NightRef, input.MatchID, input.UserID)
	if err != nil {
		return match.Match{}, err
	}
	next, err := match.Submit(m, partnershipID, input.Team1Score, input.Team2Score, s.now().UTC())
	if err != nil {
		return match.Match{}, mapScoreError(err)
	}
	return saveMatch(ctx, s.matchRepo, s.publisher, next)
}

func (s *ScoreService) ConfirmScore(ctx context.Context, input ScoreActionInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.ConfirmScore", nightAttr(input.NightID))
	defer span.End()

	return s.respond(ctx, input, match.Confirm)
}

func (s *ScoreService) DisputeScore(ctx context.Context, input ScoreActionInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.DisputeScore", nightAttr(input.NightID))
	defer span.End()

	return s.respond(ctx, input, match.Dispute)
}

func (s *ScoreService) CancelScore(ctx context.Context, input ScoreActionInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.CancelScore", nightAttr(input.NightID))
	defer span.End()

	return s.respond(ctx, input, match.Cancel)
}

func (s *ScoreService) OverrideMatchScore(ctx context.Context, input OverrideScoreInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.OverrideMatchScore", nightAttr(input.NightID))
	defer span.End()

	if !s.admins.Has(input.UserID) {
		return match.Match{}, ErrForbidden
	}
	_, m, err := loadMatch(ctx, s.nightRepo, s.matchRepo, input.NightRef, input.MatchID)
	if err != nil {
		return match.Match{}, err
	}

	next, err := match.Override(m, input.Team1Score, input.Team2Score, s.now().UTC())
	if err != nil {
		return match.Match{}, mapScoreError(err)
	}
	return saveMatch(ctx, s.matchRepo, s.publisher, next)
}

func (s *ScoreService) respond(ctx context.Context, input ScoreActionInput, apply func(match.Match, string, time.Time) (match.Match, error)) (match.Match, error) {
	m, partnershipID, err := s.resolveActor(ctx, input.NightRef, input.MatchID, input.UserID)
	if err != nil {
		return match.Match{}, err
	}
	next, err := apply(m, partnershipID, s.now().UTC())
	if err != nil {
		return match.Match{}, mapScoreError(err)
	}
	return saveMatch(ctx, s.matchRepo, s.publisher, next)
}

// resolveActor maps the user to the partnership they play the match with.
func (s *ScoreService) resolveActor(ctx context.Context, ref NightRef, matchID, userID string) (match.Match, string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return match.Match{}, "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	item, m, err := loadMatch(ctx, s.nightRepo, s.matchRepo, ref, matchID)
	if err != nil {
		return match.Match{}, "", err
	}

	p, exists, err := s.partnershipRepo.GetActiveByPlayer(ctx, item.ID, userID)
	if err != nil {
		return match.Match{}, "", fmt.Errorf("get active partnership: %w", err)
	}
	if !exists || !m.Has(p.ID) {
		return match.Match{}, "", ErrNotParticipant
	}
	return m, p.ID, nil
}
