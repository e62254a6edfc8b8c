package match

// History records which partnerships already faced each other tonight.
type History map[string]map[string]struct{}

// BuildHistory collects opponents from every match that was not cancelled.
func BuildHistory(matches []Match) History {
	h := make(History)
	for _, m := range matches {
		if m.Status == StatusCancelled {
			continue
		}
		h.add(m.Partnership1ID, m.Partnership2ID)
		h.add(m.Partnership2ID, m.Partnership1ID)
	}
	return h
}

func (h History) Played(a, b string) bool {
	_, ok := h[a][b]
	return ok
}

func (h History) add(a, b string) {
	if h[a] == nil {
		h[a] = make(map[string]struct{})
	}
	h[a][b] = struct{}{}
}

type Pair struct {
	Partnership1ID string
	Partnership2ID string
	// Repeat is set when every remaining candidate had already played the head partnership.
	Repeat bool
}

// PairPartnerships pairs queued partnerships in arrival order for at most courts
// matches. The head of the queue takes the earliest candidate it has not played;
// when none is left it takes the earliest candidate anyway. Partnerships that
// are not paired stay out of the result.
func PairPartnerships(queue []string, history History, courts int) []Pair {
	if courts <= 0 || len(queue) < 2 {
		return nil
	}

	remaining := append([]string(nil), queue...)
	pairs := make([]Pair, 0, min(courts, len(queue)/2))

	for len(pairs) < courts && len(remaining) >= 2 {
		head := remaining[0]
		pick, repeat := 1, true
		for i := 1; i < len(remaining); i++ {
			if !history.Played(head, remaining[i]) {
				pick, repeat = i, false
				break
			}
		}

		pairs = append(pairs, Pair{
			Partnership1ID: head,
			Partnership2ID: remaining[pick],
			Repeat:         repeat,
		})
		remaining = append(remaining[1:pick], remaining[pick+1:]...)
	}

	return pairs
}
