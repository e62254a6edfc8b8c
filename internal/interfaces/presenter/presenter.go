// Package presenter converts domain rows and usecase results into wire shapes.
package presenter

import (
	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	"github.com/riskibarqy/league-night/internal/usecase"
	"github.com/riskibarqy/league-night/pkg/wire"
)

func Night(n night.Night) wire.Night {
	labels := append([]string{}, n.CourtLabels...)
	return wire.Night{
		ID:              n.ID,
		LeagueID:        n.LeagueID,
		Date:            n.Date.Format(wire.DateLayout),
		Status:          string(n.Status),
		CourtsAvailable: n.CourtsAvailable,
		CourtLabels:     labels,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
}

func Summary(s night.Summary) wire.Summary {
	return wire.Summary{
		CheckedInCount:        s.CheckedInCount,
		PartnershipsCount:     s.PartnershipsCount,
		PendingRequestsCount:  s.PendingRequestsCount,
		ActiveMatchesCount:    s.ActiveMatchesCount,
		CompletedMatchesCount: s.CompletedMatchesCount,
	}
}

func CheckIn(c checkin.CheckIn) wire.CheckIn {
	return wire.CheckIn{
		NightID:     c.NightID,
		PlayerID:    c.PlayerID,
		CheckedInAt: c.CheckedInAt,
	}
}

func Request(r partnership.Request) wire.PartnershipRequest {
	return wire.PartnershipRequest{
		ID:          r.ID,
		NightID:     r.NightID,
		RequesterID: r.RequesterID,
		RequestedID: r.RequestedID,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func Partnership(p partnership.Partnership) wire.Partnership {
	return wire.Partnership{
		ID:        p.ID,
		NightID:   p.NightID,
		Player1ID: p.Player1ID,
		Player2ID: p.Player2ID,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func Match(m match.Match) wire.Match {
	return wire.Match{
		ID:                 m.ID,
		NightID:            m.NightID,
		Partnership1ID:     m.Partnership1ID,
		Partnership2ID:     m.Partnership2ID,
		CourtLabel:         m.CourtLabel,
		Status:             string(m.Status),
		ScoreStatus:        string(m.ScoreStatus),
		Team1Score:         copyInt(m.Team1Score),
		Team2Score:         copyInt(m.Team2Score),
		PendingTeam1Score:  copyInt(m.PendingTeam1Score),
		PendingTeam2Score:  copyInt(m.PendingTeam2Score),
		PendingSubmittedBy: m.PendingSubmittedBy,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func CheckIns(items []checkin.CheckIn) []wire.CheckIn {
	out := make([]wire.CheckIn, 0, len(items))
	for _, item := range items {
		out = append(out, CheckIn(item))
	}
	return out
}

func Requests(items []partnership.Request) []wire.PartnershipRequest {
	out := make([]wire.PartnershipRequest, 0, len(items))
	for _, item := range items {
		out = append(out, Request(item))
	}
	return out
}

func Partnerships(items []partnership.Partnership) []wire.Partnership {
	out := make([]wire.Partnership, 0, len(items))
	for _, item := range items {
		out = append(out, Partnership(item))
	}
	return out
}

func Matches(items []match.Match) []wire.Match {
	out := make([]wire.Match, 0, len(items))
	for _, item := range items {
		out = append(out, Match(item))
	}
	return out
}

func Snapshot(s usecase.Snapshot) wire.Snapshot {
	return wire.Snapshot{
		Night:        Night(s.Night),
		Summary:      Summary(s.Summary),
		CheckIns:     CheckIns(s.CheckIns),
		Requests:     Requests(s.Requests),
		Partnerships: Partnerships(s.Partnerships),
		Matches:      Matches(s.Matches),
	}
}

func CheckInResult(r usecase.CheckInResult) wire.CheckInResult {
	return wire.CheckInResult{
		CheckIn: CheckIn(r.CheckIn),
		Summary: Summary(r.Summary),
	}
}

func Acceptance(a partnership.Acceptance) wire.Acceptance {
	return wire.Acceptance{
		Request:     Request(a.Request),
		Partnership: Partnership(a.Partnership),
		Declined:    Requests(a.Declined),
	}
}

// Payload maps a realtime payload to its wire shape. Values that are not
// domain rows pass through unchanged.
func Payload(payload any) any {
	switch v := payload.(type) {
	case night.Night:
		return Night(v)
	case checkin.CheckIn:
		return CheckIn(v)
	case partnership.Request:
		return Request(v)
	case partnership.Partnership:
		return Partnership(v)
	case match.Match:
		return Match(v)
	default:
		return payload
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
