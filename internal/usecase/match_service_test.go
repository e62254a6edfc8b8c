package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	"github.com/riskibarqy/league-night/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/league-night/internal/mocks/domain/match"
	"github.com/riskibarqy/league-night/internal/platform/logging"
)

func TestMatchService_CreateMatches_CourtsAndQueue(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	f.checkIn(t, "a1", "a2", "b1", "b2", "c1", "c2", "d1", "d2", "e1", "e2")
	pa := f.partner(t, "a1", "a2")
	pb := f.partner(t, "b1", "b2")
	pc := f.partner(t, "c1", "c2")
	pd := f.partner(t, "d1", "d2")
	pe := f.partner(t, "e1", "e2")

	created, err := f.matches.CreateMatches(t.Context(), CreateMatchesInput{NightRef: f.ref, UserID: testAdminID})
	if err != nil {
		t.Fatalf("create matches: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 matches for 2 courts, got %d", len(created))
	}
	if created[0].Partnership1ID != pa.ID || created[0].Partnership2ID != pb.ID || created[0].CourtLabel != "Center" {
		t.Fatalf("unexpected first match: %+v", created[0])
	}
	if created[1].Partnership1ID != pc.ID || created[1].Partnership2ID != pd.ID || created[1].CourtLabel != "Court 2" {
		t.Fatalf("unexpected second match: %+v", created[1])
	}
	for _, m := range created {
		if m.Status != match.StatusActive || m.ScoreStatus != match.ScoreNone {
			t.Fatalf("new match must be active/none, got %s/%s", m.Status, m.ScoreStatus)
		}
	}

	again, err := f.matches.CreateMatches(t.Context(), CreateMatchesInput{NightRef: f.ref, UserID: testAdminID})
	if err != nil {
		t.Fatalf("create matches with full courts: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no matches while courts are full, got %d", len(again))
	}

	// Finish the first match; pe and the winners of court one are queued next.
	finishMatch(t, f, created[0], "a1", "b1")
	next, err := f.matches.CreateMatches(t.Context(), CreateMatchesInput{NightRef: f.ref, UserID: testAdminID})
	if err != nil {
		t.Fatalf("create next matches: %v", err)
	}
	if len(next) != 1 {
		t.Fatalf("expected 1 match on the freed court, got %d", len(next))
	}
	if next[0].Partnership1ID != pa.ID || next[0].Partnership2ID != pe.ID || next[0].CourtLabel != "Center" {
		t.Fatalf("expected pa to meet pe instead of a repeat, got %+v", next[0])
	}
	if n := f.publisher.count(event.NameMatch, event.TypeCreate); n != 3 {
		t.Fatalf("expected 3 MATCH/create events, got %d", n)
	}
}

func TestMatchService_CreateMatches_RepeatWhenNoFreshOpponent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 1)
	f.checkIn(t, "a1", "a2", "b1", "b2")
	pa := f.partner(t, "a1", "a2")
	pb := f.partner(t, "b1", "b2")

	first, err := f.matches.CreateMatches(t.Context(), CreateMatchesInput{NightRef: f.ref, UserID: testAdminID})
	if err != nil {
		t.Fatalf("create matches: %v", err)
	}
	finishMatch(t, f, first[0], "a1", "b1")

	second, err := f.matches.CreateMatches(t.Context(), CreateMatchesInput{NightRef: f.ref, UserID: testAdminID})
	if err != nil {
		t.Fatalf("create rematch: %v", err)
	}
	if len(second) != 1 || second[0].Partnership1ID != pa.ID || second[0].Partnership2ID != pb.ID {
		t.Fatalf("expected rematch of pa and pb, got %+v", second)
	}
}

func TestMatchService_CreateMatches_Guards(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusScheduled, 2)
	_, err := f.matches.CreateMatches(t.Context(), CreateMatchesInput{NightRef: f.ref, UserID: "player-1"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non admin, got %v", err)
	}
	_, err = f.matches.CreateMatches(t.Context(), CreateMatchesInput{NightRef: f.ref, UserID: testAdminID})
	if !errors.Is(err, ErrNightNotActive) {
		t.Fatalf("expected ErrNightNotActive, got %v", err)
	}
}

func TestMatchService_CreateMatches_BatchConflictUsingMockery(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	store.Seed([]night.Night{{ID: testNightID, LeagueID: testLeagueID, Status: night.StatusActive, CourtsAvailable: 1}})
	ctx := context.Background()
	for _, p := range []string{"a1", "a2", "b1", "b2"} {
		_ = store.CheckIns().Insert(ctx, checkinRow(p))
	}
	for i, pair := range [][2]string{{"a1", "a2"}, {"b1", "b2"}} {
		reqID := "r" + pair[0]
		_ = store.Partnerships().CreateRequest(ctx, partnership.Request{ID: reqID, NightID: testNightID, RequesterID: pair[0], RequestedID: pair[1], Status: partnership.RequestPending})
		if _, err := store.Partnerships().AcceptRequest(ctx, reqID, partnership.Partnership{ID: []string{"pa", "pb"}[i], NightID: testNightID, Player1ID: pair[0], Player2ID: pair[1]}, fixedTime); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}

	matchRepo := matchmock.NewRepository(t)
	matchRepo.On("ListByNight", mock.Anything, testNightID).Return([]match.Match{}, nil).Once()
	matchRepo.
		On("CreateBatch", mock.Anything, mock.MatchedBy(func(items []match.Match) bool {
			return len(items) == 1 && items[0].Partnership1ID == "pa" && items[0].Partnership2ID == "pb"
		})).
		Return(match.ErrPartnershipBusy).
		Once()

	service := NewMatchService(store.Nights(), store.Partnerships(), matchRepo, nil, NewAdmins([]string{testAdminID}), &sequenceIDGenerator{prefix: "m"}, logging.NewNop())
	_, err := service.CreateMatches(ctx, CreateMatchesInput{NightRef: NightRef{LeagueID: testLeagueID, NightID: testNightID}, UserID: testAdminID})
	if !errors.Is(err, ErrMatchInProgress) {
		t.Fatalf("expected ErrMatchInProgress, got %v", err)
	}
}

func finishMatch(t *testing.T, f *fixture, m match.Match, submitter, confirmer string) {
	t.Helper()
	if _, err := f.scores.SubmitScore(t.Context(), SubmitScoreInput{NightRef: f.ref, MatchID: m.ID, UserID: submitter, Team1Score: 11, Team2Score: 6}); err != nil {
		t.Fatalf("submit score: %v", err)
	}
	if _, err := f.scores.ConfirmScore(t.Context(), ScoreActionInput{NightRef: f.ref, MatchID: m.ID, UserID: confirmer}); err != nil {
		t.Fatalf("confirm score: %v", err)
	}
}

func TestMatchService_CreateMatches_ConcurrentCallsNeverShareACourt(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	for i := range 8 {
		a, b := fmt.Sprintf("p%d-a", i), fmt.Sprintf("p%d-b", i)
		f.checkIn(t, a, b)
		f.partner(t, a, b)
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   conc.WaitGroup
	)
	for range 8 {
		wg.Go(func() {
			_, err := f.matches.CreateMatches(context.Background(), CreateMatchesInput{NightRef: f.ref, UserID: testAdminID})
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}

	matches, err := f.store.Matches().ListByNight(t.Context(), testNightID)
	assert.NoError(t, err)
	courts := map[string]string{}
	for _, m := range matches {
		if !m.IsOpen() {
			continue
		}
		if other, dup := courts[m.CourtLabel]; dup {
			t.Fatalf("matches %s and %s share court %q", other, m.ID, m.CourtLabel)
		}
		courts[m.CourtLabel] = m.ID
	}
	assert.Len(t, courts, 2)
}
