package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GameMode selects which kind of questions a round asks for.
type GameMode string

const (
	ModeIdentity GameMode = "identity"
	ModeParty    GameMode = "party"
	ModeMixed    GameMode = "mixed"
)

// QuestionType is the concrete type of a single question. Mixed-mode rounds
// resolve to one of these per question.
type QuestionType string

const (
	QuestionIdentity QuestionType = "identity"
	QuestionParty    QuestionType = "party"
)

const (
	MinDifficulty     = 2
	MaxDifficulty     = 6
	DefaultDifficulty = 4

	// LeaderboardSize caps high-score reads; history itself is unbounded.
	LeaderboardSize = 10
)

// Member is a read-only record from the ingested parliament dataset.
// Only members with a non-empty image URL are eligible quiz subjects.
type Member struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Birthdate string `json:"birthdate,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Affiliation ties a member to a party during one parliamentary term.
// PartyID may be nil; the dataset carries historical parties without ids.
type Affiliation struct {
	MemberID  int64
	Term      int
	PartyID   *int64
	Party     string
	StartDate string
	EndDate   string
}

// Key returns the composite option key for the affiliation's party.
// Two rows with the same id and name collapse to one key; a nil id gets a
// distinct prefix so that two id-less parties with different names never
// collide with id-bearing ones.
func (a Affiliation) Key() string {
	if a.PartyID != nil {
		return fmt.Sprintf("p%d|%s", *a.PartyID, a.Party)
	}
	return "x|" + a.Party
}

// Option is one selectable answer. Key is a member id (identity questions)
// or a composite party key (party questions).
type Option struct {
	Key   string `json:"id"`
	Label string `json:"label"`
}

// Question is the ephemeral payload returned to clients. The correctness
// binding lives entirely inside Token; nothing is persisted server-side.
type Question struct {
	Type       QuestionType `json:"questionType"`
	Prompt     string       `json:"prompt"`
	Token      string       `json:"token"`
	ImageURL   string       `json:"imageUrl,omitempty"`
	Birthdate  string       `json:"birthdate,omitempty"`
	Options    []Option     `json:"options"`
	Mode       GameMode     `json:"gameMode"`
	Difficulty int          `json:"difficulty"`
}

// Verdict is the outcome of checking a guess against a token.
type Verdict struct {
	Correct   bool         `json:"correct"`
	AnswerKey string       `json:"answerId"`
	Type      QuestionType `json:"questionType"`
}

// HighScore is one leaderboard entry, scoped by (mode, difficulty).
type HighScore struct {
	Initials   string    `json:"initials"`
	Score      int       `json:"score"`
	Mode       GameMode  `json:"-"`
	Difficulty int       `json:"-"`
	CreatedAt  time.Time `json:"-"`
}

// ParseGameMode maps a raw mode string to a GameMode, defaulting to
// identity for anything unrecognized.
func ParseGameMode(raw string) GameMode {
	switch GameMode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeParty:
		return ModeParty
	case ModeMixed:
		return ModeMixed
	default:
		return ModeIdentity
	}
}

// ClampDifficulty forces a difficulty into [MinDifficulty, MaxDifficulty].
func ClampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

// ParseDifficulty parses a raw difficulty parameter; non-numeric or missing
// values fall back to the default, everything else is clamped.
func ParseDifficulty(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultDifficulty
	}
	d, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultDifficulty
	}
	return ClampDifficulty(d)
}

// NormalizeInitials trims and truncates initials to three runes; blank
// input becomes a placeholder so the board never shows empty rows.
func NormalizeInitials(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "???"
	}
	runes := []rune(trimmed)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}

// DistinctPartyChoices filters oversampled affiliation rows down to at most
// limit distinct party identities, skipping excluded keys. Repositories
// fetch roughly 3x limit and funnel through here because exact exclusion is
// not guaranteed in a single random query.
func DistinctPartyChoices(rows []Affiliation, exclude map[string]struct{}, limit int) []Affiliation {
	out := make([]Affiliation, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, row := range rows {
		if len(out) == limit {
			break
		}
		key := row.Key()
		if _, skip := exclude[key]; skip {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}
