package usecase

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

func TestPartnershipService_AcceptDeclinesOtherPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	f.checkIn(t, "A", "B", "C", "D")

	r1 := f.request(t, "A", "B")
	require.Equal(t, partnership.RequestPending, r1.Status)
	rAC := f.request(t, "C", "A")
	rBD := f.request(t, "B", "D")

	got, err := f.partnerships.AcceptRequest(t.Context(), RespondPartnershipRequestInput{NightRef: f.ref, RequestID: r1.ID, UserID: "B"})
	require.NoError(t, err)

	assert.Equal(t, partnership.RequestAccepted, got.Request.Status)
	assert.True(t, got.Partnership.IsActive)
	assert.Equal(t, "A", got.Partnership.Player1ID)
	assert.Equal(t, "B", got.Partnership.Player2ID)
	require.Len(t, got.Declined, 2)

	requests, err := f.partnerships.ListRequests(t.Context(), f.ref)
	require.NoError(t, err)
	for _, req := range requests {
		if req.ID == rAC.ID || req.ID == rBD.ID {
			assert.Equal(t, partnership.RequestDeclined, req.Status, "request %s", req.ID)
		}
		if req.Status == partnership.RequestPending && (req.Involves("A") || req.Involves("B")) {
			t.Fatalf("pending request %s still involves a partnered player", req.ID)
		}
	}

	assert.Equal(t, 3, f.publisher.count(event.NamePartnershipRequest, event.TypeUpdate))
	assert.Equal(t, 1, f.publisher.count(event.NamePartnership, event.TypeCreate))
}

func TestPartnershipService_SendRequest_Rules(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	f.checkIn(t, "A", "B", "C", "D")
	f.partner(t, "C", "D")
	f.request(t, "A", "B")

	cases := []struct {
		name     string
		from, to string
		want     error
	}{
		{name: "self", from: "A", to: "A", want: ErrInvalidInput},
		{name: "not checked in", from: "A", to: "Z", want: ErrNotCheckedIn},
		{name: "already partnered", from: "A", to: "C", want: ErrAlreadyPartnered},
		{name: "duplicate same direction", from: "A", to: "B", want: ErrDuplicateRequest},
		{name: "duplicate reversed", from: "B", to: "A", want: ErrDuplicateRequest},
	}
	for _, tc := range cases {
		_, err := f.partnerships.SendRequest(t.Context(), SendPartnershipRequestInput{NightRef: f.ref, RequesterID: tc.from, RequestedID: tc.to})
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestPartnershipService_AcceptAndReject_ActorRules(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	f.checkIn(t, "A", "B", "C")
	req := f.request(t, "A", "B")

	_, err := f.partnerships.AcceptRequest(t.Context(), RespondPartnershipRequestInput{NightRef: f.ref, RequestID: req.ID, UserID: "A"})
	require.ErrorIs(t, err, ErrForbidden, "requester cannot accept")

	_, err = f.partnerships.RejectRequest(t.Context(), RespondPartnershipRequestInput{NightRef: f.ref, RequestID: req.ID, UserID: "C"})
	require.ErrorIs(t, err, ErrForbidden, "outsider cannot reject")

	_, err = f.partnerships.AcceptRequest(t.Context(), RespondPartnershipRequestInput{NightRef: f.ref, RequestID: "missing", UserID: "B"})
	require.ErrorIs(t, err, ErrNotFound)

	declined, err := f.partnerships.RejectRequest(t.Context(), RespondPartnershipRequestInput{NightRef: f.ref, RequestID: req.ID, UserID: "A"})
	require.NoError(t, err, "requester may withdraw")
	assert.Equal(t, partnership.RequestDeclined, declined.Status)

	_, err = f.partnerships.AcceptRequest(t.Context(), RespondPartnershipRequestInput{NightRef: f.ref, RequestID: req.ID, UserID: "B"})
	require.ErrorIs(t, err, ErrNotPending)
	_, err = f.partnerships.RejectRequest(t.Context(), RespondPartnershipRequestInput{NightRef: f.ref, RequestID: req.ID, UserID: "B"})
	require.ErrorIs(t, err, ErrNotPending)
}

func TestPartnershipService_AcceptTwice_NotPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 2)
	f.checkIn(t, "A", "B")
	req := f.request(t, "A", "B")
	input := RespondPartnershipRequestInput{NightRef: f.ref, RequestID: req.ID, UserID: "B"}

	_, err := f.partnerships.AcceptRequest(t.Context(), input)
	require.NoError(t, err)
	_, err = f.partnerships.AcceptRequest(t.Context(), input)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestPartnershipService_RacingAccepts(t *testing.T) {
	t.Parallel()

	for round := range 20 {
		f := newFixture(t, night.StatusActive, 2)
		f.checkIn(t, "A", "B", "C")
		r1 := f.request(t, "A", "B")
		r2 := f.request(t, "A", "C")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		for i, in := range []RespondPartnershipRequestInput{
			{NightRef: f.ref, RequestID: r1.ID, UserID: "B"},
			{NightRef: f.ref, RequestID: r2.ID, UserID: "C"},
		} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, errs[i] = f.partnerships.AcceptRequest(t.Context(), in)
			}()
		}
		close(start)
		wg.Wait()

		var winners, losers int
		for _, err := range errs {
			switch {
			case err == nil:
				winners++
			case errors.Is(err, ErrAlreadyPartnered):
				losers++
			default:
				t.Fatalf("round %d: unexpected error %v", round, err)
			}
		}
		if winners != 1 || losers != 1 {
			t.Fatalf("round %d: expected one winner and one AlreadyPartnered, got %v", round, errs)
		}

		items, err := f.partnerships.ListPartnerships(t.Context(), f.ref)
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
}

func TestPartnershipService_RemovePartnership(t *testing.T) {
	t.Parallel()

	f := newFixture(t, night.StatusActive, 1)
	f.checkIn(t, "A", "B", "C", "D")
	p1 := f.partner(t, "A", "B")
	f.partner(t, "C", "D")

	_, err := f.matches.CreateMatches(t.Context(), CreateMatchesInput{NightRef: f.ref, UserID: testAdminID})
	require.NoError(t, err)

	_, err = f.partnerships.RemovePartnership(t.Context(), RemovePartnershipInput{NightRef: f.ref, UserID: "A"})
	require.ErrorIs(t, err, ErrMatchInProgress)

	matches, err := f.matches.ListMatches(t.Context(), f.ref)
	require.NoError(t, err)
	_, err = f.matches.CancelMatch(t.Context(), AdminMatchInput{NightRef: f.ref, MatchID: matches[0].ID, UserID: testAdminID})
	require.NoError(t, err)

	removed, err := f.partnerships.RemovePartnership(t.Context(), RemovePartnershipInput{NightRef: f.ref, UserID: "B"})
	require.NoError(t, err)
	assert.Equal(t, p1.ID, removed.ID)
	assert.False(t, removed.IsActive)

	_, err = f.partnerships.RemovePartnership(t.Context(), RemovePartnershipInput{NightRef: f.ref, UserID: "A"})
	require.ErrorIs(t, err, ErrNotFound)

	// Both players may negotiate again.
	f.partner(t, "B", "A")
	_, err = f.checkIns.UncheckIn(t.Context(), CheckInInput{NightRef: f.ref, PlayerID: "A"})
	require.ErrorIs(t, err, ErrPartnershipActive)
}
