package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/quiz"
)

// ScoreCache is a read-through Redis cache in front of a ScoreStore.
// Boards are cached per (mode, difficulty) scope as JSON and invalidated
// on every write, so the page served after a submission is always fresh.
type ScoreCache struct {
	client *redis.Client
	inner  quiz.ScoreStore
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewScoreCache(client *redis.Client, inner quiz.ScoreStore, ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type cachedBoard struct {
	Initials  string    `json:"initials"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *ScoreCache) AddScore(ctx context.Context, entry domain.HighScore) error {
	if err := c.inner.AddScore(ctx, entry); err != nil {
		return err
	}
	// Best-effort invalidation; a stale board expires via TTL anyway.
	_ = c.client.Del(ctx, c.key(entry.Mode, entry.Difficulty)).Err()
	return nil
}

func (c *ScoreCache) TopScores(ctx context.Context, mode domain.GameMode, difficulty, limit int) ([]domain.HighScore, error) {
	key := c.key(mode, difficulty)

	if board, ok := c.lookup(ctx, key, mode, difficulty, limit); ok {
		return board, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if board, ok := c.lookup(ctx, key, mode, difficulty, limit); ok {
			return board, nil
		}

		board, err := c.inner.TopScores(ctx, mode, difficulty, limit)
		if err != nil {
			return nil, err
		}

		cached := make([]cachedBoard, 0, len(board))
		for _, e := range board {
			cached = append(cached, cachedBoard{Initials: e.Initials, Score: e.Score, CreatedAt: e.CreatedAt})
		}
		if raw, err := json.Marshal(cached); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return board, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.HighScore), nil
}

func (c *ScoreCache) lookup(ctx context.Context, key string, mode domain.GameMode, difficulty, limit int) ([]domain.HighScore, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var cached []cachedBoard
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	board := make([]domain.HighScore, 0, len(cached))
	for _, e := range cached {
		if len(board) == limit {
			break
		}
		board = append(board, domain.HighScore{
			Initials:   e.Initials,
			Score:      e.Score,
			Mode:       mode,
			Difficulty: difficulty,
			CreatedAt:  e.CreatedAt,
		})
	}
	return board, true
}

func (c *ScoreCache) key(mode domain.GameMode, difficulty int) string {
	return "highscores:" + string(mode) + ":" + strconv.Itoa(difficulty)
}

func (c *ScoreCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
