package quiz

import (
	"context"
	"fmt"
	"time"

	"thingmadurinn/internal/domain"
)

// ScoreStore persists high-score entries. History is append-only and
// unbounded; reads are capped by the limit argument.
type ScoreStore interface {
	AddScore(ctx context.Context, entry domain.HighScore) error
	TopScores(ctx context.Context, mode domain.GameMode, difficulty, limit int) ([]domain.HighScore, error)
}

// ScoreService validates submissions, reads scoped leaderboards, and fans
// refreshed boards out to websocket subscribers.
type ScoreService struct {
	store ScoreStore
	hub   *ScoreHub
	clock func() time.Time
}

func NewScoreService(store ScoreStore, hub *ScoreHub) *ScoreService {
	return &ScoreService{store: store, hub: hub, clock: time.Now}
}

// NewScoreServiceWithClock is test-only for deterministic timestamps.
func NewScoreServiceWithClock(store ScoreStore, hub *ScoreHub, now func() time.Time) *ScoreService {
	return &ScoreService{store: store, hub: hub, clock: now}
}

// Top returns the leaderboard page for one (mode, difficulty) scope,
// highest score first, ties broken by earliest submission.
func (s *ScoreService) Top(ctx context.Context, mode domain.GameMode, difficulty int) ([]domain.HighScore, error) {
	board, err := s.store.TopScores(ctx, mode, domain.ClampDifficulty(difficulty), domain.LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return board, nil
}

// Submit stores a validated entry and returns the refreshed board for its
// scope. Non-positive scores are rejected outright.
func (s *ScoreService) Submit(ctx context.Context, initials string, score int, mode domain.GameMode, difficulty int) ([]domain.HighScore, error) {
	if score <= 0 {
		return nil, fmt.Errorf("%w: score must be a positive integer", domain.ErrInvalidRequest)
	}
	difficulty = domain.ClampDifficulty(difficulty)

	entry := domain.HighScore{
		Initials:   domain.NormalizeInitials(initials),
		Score:      score,
		Mode:       mode,
		Difficulty: difficulty,
		CreatedAt:  s.clock(),
	}
	if err := s.store.AddScore(ctx, entry); err != nil {
		return nil, fmt.Errorf("add score: %w", err)
	}

	board, err := s.store.TopScores(ctx, mode, difficulty, domain.LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	if s.hub != nil {
		s.hub.Broadcast(mode, difficulty, board)
	}
	return board, nil
}
