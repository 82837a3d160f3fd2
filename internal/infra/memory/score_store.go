package memory

import (
	"context"
	"sort"
	"sync"

	"thingmadurinn/internal/domain"
)

// ScoreStore keeps high scores in memory. Entries are append-only; reads
// sort and cap per scope the same way the SQL stores do.
type ScoreStore struct {
	mu      sync.Mutex
	entries []scoredEntry
	seq     int
}

type scoredEntry struct {
	domain.HighScore
	seq int
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) AddScore(_ context.Context, entry domain.HighScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.entries = append(s.entries, scoredEntry{HighScore: entry, seq: s.seq})
	return nil
}

func (s *ScoreStore) TopScores(_ context.Context, mode domain.GameMode, difficulty, limit int) ([]domain.HighScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scoped := make([]scoredEntry, 0)
	for _, e := range s.entries {
		if e.Mode == mode && e.Difficulty == difficulty {
			scoped = append(scoped, e)
		}
	}
	sort.Slice(scoped, func(i, j int) bool {
		if scoped[i].Score != scoped[j].Score {
			return scoped[i].Score > scoped[j].Score
		}
		if !scoped[i].CreatedAt.Equal(scoped[j].CreatedAt) {
			return scoped[i].CreatedAt.Before(scoped[j].CreatedAt)
		}
		return scoped[i].seq < scoped[j].seq
	})
	if len(scoped) > limit {
		scoped = scoped[:limit]
	}

	out := make([]domain.HighScore, 0, len(scoped))
	for _, e := range scoped {
		out = append(out, e.HighScore)
	}
	return out, nil
}
