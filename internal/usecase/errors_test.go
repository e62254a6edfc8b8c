package usecase

import (
	stderrors "errors"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestConflictReasonsAreDistinct(t *testing.T) {
	reasons := map[string]error{
		"already checked in": ErrAlreadyCheckedIn,
		"partnership active": ErrPartnershipActive,
		"not checked in":     ErrNotCheckedIn,
		"already partnered":  ErrAlreadyPartnered,
		"duplicate request":  ErrDuplicateRequest,
		"not pending":        ErrNotPending,
		"already pending":    ErrAlreadyPending,
		"score not pending":  ErrScoreNotPending,
		"night not active":   ErrNightNotActive,
		"night closed":       ErrNightClosed,
		"match in progress":  ErrMatchInProgress,
		"match closed":       ErrMatchClosed,
		"stale write":        ErrStaleWrite,
	}

	for name, reason := range reasons {
		t.Run(name, func(t *testing.T) {
			wrapped := errors.Wrap(reason, "accept partnership request")
			assert.True(t, errors.Is(wrapped, ErrConflict))
			assert.True(t, stderrors.Is(wrapped, ErrConflict))
			assert.True(t, errors.Is(wrapped, reason))
			assert.False(t, errors.Is(wrapped, ErrForbidden))

			for otherName, other := range reasons {
				if otherName == name {
					continue
				}
				assert.False(t, errors.Is(wrapped, other), "%s matched %s", name, otherName)
			}
		})
	}

	assert.False(t, errors.Is(ErrNotPending, ErrAlreadyPartnered))
	assert.False(t, errors.Is(ErrStaleWrite, ErrAlreadyCheckedIn))
	assert.False(t, errors.Is(ErrConflict, ErrAlreadyPartnered))
}

func TestNotParticipantIsForbidden(t *testing.T) {
	err := errors.Wrap(ErrNotParticipant, "submit score")
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(ErrForbidden, ErrNotParticipant))
}
