package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"thingmadurinn/internal/domain"
)

// ScoreStore persists high scores in the SQLite file alongside the corpus.
type ScoreStore struct {
	db *sql.DB
}

func NewScoreStore(db *sql.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

func (s *ScoreStore) AddScore(ctx context.Context, entry domain.HighScore) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO high_scores (initials, score, mode, difficulty, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.Initials, entry.Score, string(entry.Mode), entry.Difficulty, entry.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) TopScores(ctx context.Context, mode domain.GameMode, difficulty, limit int) ([]domain.HighScore, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT initials, score, created_at
		FROM high_scores
		WHERE mode = ? AND difficulty = ?
		ORDER BY score DESC, created_at ASC, id ASC
		LIMIT ?`, string(mode), difficulty, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()

	var out []domain.HighScore
	for rows.Next() {
		var (
			entry = domain.HighScore{Mode: mode, Difficulty: difficulty}
			unix  int64
		)
		if err := rows.Scan(&entry.Initials, &entry.Score, &unix); err != nil {
			return nil, fmt.Errorf("top scores: %w", err)
		}
		entry.CreatedAt = time.Unix(unix, 0)
		out = append(out, entry)
	}
	return out, rows.Err()
}
