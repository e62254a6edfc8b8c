package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	"github.com/riskibarqy/league-night/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-night/internal/platform/logging"
)

const (
	testLeagueID = "league-1"
	testNightID  = "N101"
	testAdminID  = "admin-1"
)

var fixedTime = time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

func checkinRow(playerID string) checkin.CheckIn {
	return checkin.CheckIn{NightID: testNightID, PlayerID: playerID, CheckedInAt: fixedTime}
}

type sequenceIDGenerator struct {
	prefix string
	n      atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.n.Add(1)), nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []event.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg event.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *recordingPublisher) count(name event.Name, typ event.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, msg := range p.messages {
		if msg.Event == name && msg.Type == typ {
			n++
		}
	}
	return n
}

// stepClock advances one second per reading so creation order is deterministic.
type stepClock struct {
	base  time.Time
	ticks atomic.Int64
}

func (c *stepClock) Now() time.Time {
	return c.base.Add(time.Duration(c.ticks.Add(1)) * time.Second)
}

type fixture struct {
	store        *memory.Store
	publisher    *recordingPublisher
	nights       *NightService
	checkIns     *CheckInService
	partnerships *PartnershipService
	matches      *MatchService
	scores       *ScoreService
	ref          NightRef
}

func newFixture(t *testing.T, status night.Status, courts int) *fixture {
	t.Helper()

	clock := &stepClock{base: fixedTime}
	store := memory.NewStore()
	store.Seed([]night.Night{{
		ID:              testNightID,
		LeagueID:        testLeagueID,
		Date:            clock.base,
		Status:          status,
		CourtsAvailable: courts,
		CourtLabels:     []string{"Center"},
	}})

	publisher := &recordingPublisher{}
	admins := NewAdmins([]string{testAdminID})
	ids := &sequenceIDGenerator{prefix: "id"}

	f := &fixture{
		store:        store,
		publisher:    publisher,
		nights:       NewNightService(store.Nights(), publisher, admins, ids),
		checkIns:     NewCheckInService(store.Nights(), store.CheckIns(), publisher),
		partnerships: NewPartnershipService(store.Nights(), store.CheckIns(), store.Partnerships(), publisher, ids),
		matches:      NewMatchService(store.Nights(), store.Partnerships(), store.Matches(), publisher, admins, ids, logging.NewNop()),
		scores:       NewScoreService(store.Nights(), store.Partnerships(), store.Matches(), publisher, admins),
		ref:          NightRef{LeagueID: testLeagueID, NightID: testNightID},
	}
	f.nights.now = clock.Now
	f.checkIns.now = clock.Now
	f.partnerships.now = clock.Now
	f.matches.now = clock.Now
	f.scores.now = clock.Now
	return f
}

func (f *fixture) checkIn(t *testing.T, players ...string) {
	t.Helper()
	for _, p := range players {
		if _, err := f.checkIns.CheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: p}); err != nil {
			t.Fatalf("check in %s: %v", p, err)
		}
	}
}

func (f *fixture) request(t *testing.T, from, to string) partnership.Request {
	t.Helper()
	req, err := f.partnerships.SendRequest(t.Context(), SendPartnershipRequestInput{NightRef: f.ref, RequesterID: from, RequestedID: to})
	if err != nil {
		t.Fatalf("send request %s->%s: %v", from, to, err)
	}
	return req
}

func (f *fixture) partner(t *testing.T, a, b string) partnership.Partnership {
	t.Helper()
	req := f.request(t, a, b)
	accepted, err := f.partnerships.AcceptRequest(t.Context(), RespondPartnershipRequestInput{NightRef: f.ref, RequestID: req.ID, UserID: b})
	if err != nil {
		t.Fatalf("accept %s: %v", req.ID, err)
	}
	return accepted.Partnership
}
