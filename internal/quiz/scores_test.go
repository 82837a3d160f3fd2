package quiz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/infra/memory"
	"thingmadurinn/internal/quiz"
)

func TestSubmitRejectsNonPositiveScores(t *testing.T) {
	svc := quiz.NewScoreService(memory.NewScoreStore(), nil)

	for _, score := range []int{0, -5} {
		_, err := svc.Submit(context.Background(), "abc", score, domain.ModeIdentity, 4)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("score %d: got %v, want ErrInvalidRequest", score, err)
		}
	}
}

func TestSubmitNormalizesInitials(t *testing.T) {
	ctx := context.Background()
	svc := quiz.NewScoreService(memory.NewScoreStore(), nil)

	board, err := svc.Submit(ctx, "abcdef", 10, domain.ModeParty, 3)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(board) != 1 || board[0].Initials != "abc" {
		t.Fatalf("expected truncated initials, got %+v", board)
	}

	board, err = svc.Submit(ctx, "   ", 5, domain.ModeParty, 3)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(board) != 2 || board[1].Initials != "???" {
		t.Fatalf("expected placeholder initials, got %+v", board)
	}
}

func TestScoresAreScopedByModeAndDifficulty(t *testing.T) {
	ctx := context.Background()
	svc := quiz.NewScoreService(memory.NewScoreStore(), nil)

	if _, err := svc.Submit(ctx, "abc", 10, domain.ModeParty, 3); err != nil {
		t.Fatalf("submit: %v", err)
	}

	board, err := svc.Top(ctx, domain.ModeParty, 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(board) != 1 || board[0].Initials != "abc" || board[0].Score != 10 {
		t.Fatalf("expected the entry in its own scope, got %+v", board)
	}

	for _, scope := range []struct {
		mode       domain.GameMode
		difficulty int
	}{{domain.ModeIdentity, 3}, {domain.ModeParty, 4}} {
		board, err := svc.Top(ctx, scope.mode, scope.difficulty)
		if err != nil {
			t.Fatalf("top: %v", err)
		}
		if len(board) != 0 {
			t.Fatalf("scope %v/%d must be empty, got %+v", scope.mode, scope.difficulty, board)
		}
	}
}

func TestBoardOrderAndPageSize(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	svc := quiz.NewScoreServiceWithClock(memory.NewScoreStore(), nil, clock)

	scores := []int{5, 12, 7, 12, 3, 9, 1, 8, 2, 6, 4, 11}
	initials := []string{"aaa", "bbb", "ccc", "ddd", "eee", "fff", "ggg", "hhh", "iii", "jjj", "kkk", "lll"}
	for i, s := range scores {
		if _, err := svc.Submit(ctx, initials[i], s, domain.ModeIdentity, 4); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	board, err := svc.Top(ctx, domain.ModeIdentity, 4)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(board) != domain.LeaderboardSize {
		t.Fatalf("expected page of %d, got %d", domain.LeaderboardSize, len(board))
	}
	// Tied 12s keep submission order: bbb before ddd.
	if board[0].Initials != "bbb" || board[1].Initials != "ddd" || board[2].Initials != "lll" {
		t.Fatalf("unexpected head of board: %+v", board[:3])
	}
	for i := 1; i < len(board); i++ {
		if board[i].Score > board[i-1].Score {
			t.Fatalf("board not sorted at %d: %+v", i, board)
		}
	}
}

func TestSubmitBroadcastsRefreshedBoard(t *testing.T) {
	ctx := context.Background()
	hub := quiz.NewScoreHub()
	svc := quiz.NewScoreService(memory.NewScoreStore(), hub)

	updates, cancel := hub.Subscribe(domain.ModeIdentity, 4)
	defer cancel()

	// Different scope must not reach this subscriber.
	if _, err := svc.Submit(ctx, "zzz", 3, domain.ModeParty, 4); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(ctx, "abc", 7, domain.ModeIdentity, 4); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case board := <-updates:
		if len(board) != 1 || board[0].Initials != "abc" {
			t.Fatalf("unexpected broadcast %+v", board)
		}
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
	}
}
