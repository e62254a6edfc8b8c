package usecase

import "strings"

// Admins is the set of user ids allowed to run league night admin actions.
type Admins map[string]struct{}

func NewAdmins(userIDs []string) Admins {
	out := make(Admins, len(userIDs))
	for _, id := range userIDs {
		if id = strings.TrimSpace(id); id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

func (a Admins) Has(userID string) bool {
	_, ok := a[strings.TrimSpace(userID)]
	return ok
}
