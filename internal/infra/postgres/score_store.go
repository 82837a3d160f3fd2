package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"thingmadurinn/internal/domain"
)

// ScoreStore persists high scores in Postgres.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) AddScore(ctx context.Context, entry domain.HighScore) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO high_scores (initials, score, mode, difficulty, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.Initials, entry.Score, string(entry.Mode), entry.Difficulty, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) TopScores(ctx context.Context, mode domain.GameMode, difficulty, limit int) ([]domain.HighScore, error) {
	rows, err := s.pool.Query(ctx, `SELECT initials, score, created_at
		FROM high_scores
		WHERE mode = $1 AND difficulty = $2
		ORDER BY score DESC, created_at ASC, id ASC
		LIMIT $3`, string(mode), difficulty, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()

	var out []domain.HighScore
	for rows.Next() {
		entry := domain.HighScore{Mode: mode, Difficulty: difficulty}
		if err := rows.Scan(&entry.Initials, &entry.Score, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("top scores: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
