package game

// Summary is the end-of-match report: final standing, per-participant
// stats and category awards.
type Summary struct {
	MatchID    string      `json:"matchId"`
	Seed       int64       `json:"seed"`
	Difficulty string      `json:"difficulty"`
	Reason     string      `json:"reason"`
	DurationMs int64       `json:"durationMs"`
	Progress   float64     `json:"progress"`
	Ranking    []RankEntry `json:"ranking"`
	Awards     []Award     `json:"awards,omitempty"`
}

// RankEntry is one row of the final standing.
type RankEntry struct {
	Rank     int    `json:"rank"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Pickups  int    `json:"pickups"`
	Defeats  int    `json:"defeats"`
	Rescues  int    `json:"rescues"`
	Captures int    `json:"captures"`
}

// Award names the leader of one contribution category. Ties produce
// multiple winners; categories nobody scored in are omitted.
type Award struct {
	Category string   `json:"category"`
	Winners  []string `json:"winners"` // participant ids
	Value    int      `json:"value"`
}

// Summary builds the end-of-match report. It is available only after
// termination; the second return is false while the match is running.
func (e *Engine) Summary() (Summary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.outcome == nil {
		return Summary{}, false
	}
	s := Summary{
		MatchID:    e.matchID,
		Seed:       e.seed,
		Difficulty: e.diff.Name,
		Progress:   e.progress(),
		Reason:     string(e.outcome.Reason),
		DurationMs: e.outcome.DurationMs,
	}

	for i, p := range e.rankParticipants() {
		s.Ranking = append(s.Ranking, RankEntry{
			Rank:     i + 1,
			ID:       p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Pickups:  p.Pickups,
			Defeats:  p.Defeats,
			Rescues:  p.Rescues,
			Captures: p.Captures,
		})
	}

	categories := []struct {
		name string
		stat func(*Participant) int
	}{
		{"pathfinder", func(p *Participant) int { return p.Pickups }},
		{"slayer", func(p *Participant) int { return p.Defeats }},
		{"medic", func(p *Participant) int { return p.Rescues }},
		{"vanguard", func(p *Participant) int { return p.Captures }},
	}
	for _, cat := range categories {
		if a, ok := e.award(cat.name, cat.stat); ok {
			s.Awards = append(s.Awards, a)
		}
	}
	return s, true
}

func (e *Engine) award(name string, stat func(*Participant) int) (Award, bool) {
	best := 0
	for _, p := range e.participants {
		if v := stat(p); v > best {
			best = v
		}
	}
	if best == 0 {
		return Award{}, false
	}
	a := Award{Category: name, Value: best}
	for _, p := range e.participants {
		if stat(p) == best {
			a.Winners = append(a.Winners, p.ID)
		}
	}
	return a, true
}
