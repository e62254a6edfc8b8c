package usecase

import (
	"errors"
	"sync"
	"testing"

	cerrors "github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

func TestCheckInService_CheckIn_RecomputesSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	f.checkIn(t, "alice")

	got, err := f.checkIns.CheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: " bob "})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if got.CheckIn.PlayerID != "bob" {
		t.Fatalf("expected trimmed player id, got %q", got.CheckIn.PlayerID)
	}
	if got.Summary.CheckedInCount != 2 {
		t.Fatalf("expected 2 checked in, got %d", got.Summary.CheckedInCount)
	}
	if n := f.publisher.count(event.NameCheckIn, event.TypeCreate); n != 2 {
		t.Fatalf("expected 2 CHECKIN/create events, got %d", n)
	}
}

func TestCheckInService_CheckIn_Duplicate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	f.checkIn(t, "alice")

	_, err := f.checkIns.CheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: "alice"})
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	if !cerrors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict category, got %v", err)
	}
}

func TestCheckInService_CheckIn_ConcurrentSamePlayer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)

	const workers = 16
	start := make(chan struct{})
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.checkIns.CheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: "alice"})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyCheckedIn):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one successful check-in, got %d", ok)
	}

	summary, err := f.store.Nights().Summarize(t.Context(), testNightID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.CheckedInCount != 1 {
		t.Fatalf("expected counter 1, got %d", summary.CheckedInCount)
	}
}

func TestCheckInService_UncheckIn_Rules(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	f.checkIn(t, "alice", "bob", "carol", "dave")
	f.partner(t, "alice", "bob")
	pending := f.request(t, "carol", "dave")

	if _, err := f.checkIns.UncheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: "alice"}); !errors.Is(err, ErrPartnershipActive) {
		t.Fatalf("expected ErrPartnershipActive, got %v", err)
	}
	if _, err := f.checkIns.UncheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: "erin"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	summary, err := f.checkIns.UncheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: "carol"})
	if err != nil {
		t.Fatalf("uncheck carol: %v", err)
	}
	if summary.CheckedInCount != 3 || summary.PendingRequestsCount != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	req, _, _ := f.store.Partnerships().GetRequest(t.Context(), pending.ID)
	if req.Status != partnership.RequestDeclined {
		t.Fatalf("expected carol's pending request declined, got %s", req.Status)
	}
	if n := f.publisher.count(event.NameCheckIn, event.TypeDelete); n != 1 {
		t.Fatalf("expected one CHECKIN/delete event, got %d", n)
	}
}

func TestCheckInService_ClosedOrForeignNight(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusCompleted, 2)
	if _, err := f.checkIns.CheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: "alice"}); !errors.Is(err, ErrNightClosed) {
		t.Fatalf("expected ErrNightClosed, got %v", err)
	}

	foreign := NightRef{LeagueID: "other-league", NightID: testNightID}
	if _, err := f.checkIns.CheckIn(t.Context(), CheckInInput{NightRef: foreign, PlayerID: "alice"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for night of another league, got %v", err)
	}
	if _, err := f.checkIns.CheckIn(t.Context(), CheckInInput{NightRef: f.ref}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty player, got %v", err)
	}
}
