package quiz

import (
	"strconv"
	"sync"

	"thingmadurinn/internal/domain"
)

// ScoreHub fans refreshed leaderboards out to subscribers, scoped by
// (mode, difficulty). Slow subscribers get stale snapshots dropped rather
// than blocking the broadcast.
type ScoreHub struct {
	mu   sync.Mutex
	subs map[string]map[chan []domain.HighScore]struct{}
}

func NewScoreHub() *ScoreHub {
	return &ScoreHub{subs: make(map[string]map[chan []domain.HighScore]struct{})}
}

// Subscribe registers interest in one scope. The caller must invoke the
// returned cancel function to avoid leaks.
func (h *ScoreHub) Subscribe(mode domain.GameMode, difficulty int) (<-chan []domain.HighScore, func()) {
	ch := make(chan []domain.HighScore, 8)
	key := scopeKey(mode, difficulty)

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan []domain.HighScore]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if scope, ok := h.subs[key]; ok {
			if _, ok := scope[ch]; ok {
				delete(scope, ch)
				close(ch)
			}
			if len(scope) == 0 {
				delete(h.subs, key)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast delivers a board snapshot to every subscriber of its scope.
func (h *ScoreHub) Broadcast(mode domain.GameMode, difficulty int, board []domain.HighScore) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[scopeKey(mode, difficulty)] {
		select {
		case ch <- board:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}

func scopeKey(mode domain.GameMode, difficulty int) string {
	return string(mode) + ":" + strconv.Itoa(difficulty)
}
