// Package quiz contains the question-generation and answer-verification
// core. It is stateless between calls: the correct answer travels inside
// the signed token minted for each question.
package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/gender"
)

// MemberRepository abstracts the read-only parliament dataset (postgres,
// sqlite, or in-memory).
type MemberRepository interface {
	// RandomMember returns one uniformly chosen member with an image.
	RandomMember(ctx context.Context) (domain.Member, error)
	// RandomMemberWithAffiliation additionally requires at least one
	// non-empty party affiliation.
	RandomMemberWithAffiliation(ctx context.Context) (domain.Member, error)
	// Affiliations lists a member's distinct affiliations, empty party
	// names excluded.
	Affiliations(ctx context.Context, memberID int64) ([]domain.Affiliation, error)
	// RandomDistractors returns up to limit members excluding excludeID,
	// optionally restricted to a gender-consistent name suffix. It may
	// return fewer rows than requested.
	RandomDistractors(ctx context.Context, excludeID int64, limit int, g gender.Gender) ([]domain.Member, error)
	// RandomParties returns up to limit distinct party identities whose
	// keys are not in exclude.
	RandomParties(ctx context.Context, exclude map[string]struct{}, limit int) ([]domain.Affiliation, error)
}

// TokenCodec mints and verifies the signed answer tokens.
type TokenCodec interface {
	Mint(answerKey string, qt domain.QuestionType) (string, error)
	Verify(raw string) (string, domain.QuestionType, error)
}

const (
	promptIdentity = "Hvaða þingmaður er þetta?"
	promptParty    = "Fyrir hvaða flokk sat %s á þingi?"
)

// Service builds questions and verifies guesses.
type Service struct {
	members MemberRepository
	codec   TokenCodec

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(members MemberRepository, codec TokenCodec) *Service {
	return &Service{
		members: members,
		codec:   codec,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuildQuestion assembles one question for the requested mode. Difficulty
// is the total option count and is clamped to the supported range; mixed
// mode picks a question type uniformly per call.
func (s *Service) BuildQuestion(ctx context.Context, mode domain.GameMode, difficulty int) (domain.Question, error) {
	difficulty = domain.ClampDifficulty(difficulty)

	var (
		q   domain.Question
		err error
	)
	switch s.resolveType(mode) {
	case domain.QuestionParty:
		q, err = s.partyQuestion(ctx, difficulty)
	default:
		q, err = s.identityQuestion(ctx, difficulty)
	}
	if err != nil {
		return domain.Question{}, err
	}

	q.Mode = mode
	q.Difficulty = difficulty
	return q, nil
}

// VerifyGuess decodes the token and compares the submitted answer against
// the embedded key. Numeric ids and party keys both arrive as strings by
// the time they get here.
func (s *Service) VerifyGuess(rawToken, answer string) (domain.Verdict, error) {
	rawToken = strings.TrimSpace(rawToken)
	answer = strings.TrimSpace(answer)
	if rawToken == "" || answer == "" {
		return domain.Verdict{}, fmt.Errorf("%w: token and answer are required", domain.ErrInvalidRequest)
	}

	key, qt, err := s.codec.Verify(rawToken)
	if err != nil {
		return domain.Verdict{}, err
	}
	return domain.Verdict{
		Correct:   answer == key,
		AnswerKey: key,
		Type:      qt,
	}, nil
}

func (s *Service) identityQuestion(ctx context.Context, difficulty int) (domain.Question, error) {
	subject, err := s.members.RandomMember(ctx)
	if err != nil {
		return domain.Question{}, err
	}

	distractors, err := s.memberDistractors(ctx, subject.ID, difficulty-1, gender.Classify(subject.Name))
	if err != nil {
		return domain.Question{}, err
	}

	answerKey := strconv.FormatInt(subject.ID, 10)
	options := make([]domain.Option, 0, difficulty)
	options = append(options, domain.Option{Key: answerKey, Label: subject.Name})
	for _, m := range distractors {
		options = append(options, domain.Option{Key: strconv.FormatInt(m.ID, 10), Label: m.Name})
	}
	s.shuffle(options)

	tok, err := s.codec.Mint(answerKey, domain.QuestionIdentity)
	if err != nil {
		return domain.Question{}, fmt.Errorf("mint token: %w", err)
	}
	return domain.Question{
		Type:      domain.QuestionIdentity,
		Prompt:    promptIdentity,
		Token:     tok,
		ImageURL:  subject.ImageURL,
		Birthdate: subject.Birthdate,
		Options:   options,
	}, nil
}

func (s *Service) partyQuestion(ctx context.Context, difficulty int) (domain.Question, error) {
	subject, err := s.members.RandomMemberWithAffiliation(ctx)
	if err != nil {
		return domain.Question{}, err
	}

	affiliations, err := s.members.Affiliations(ctx, subject.ID)
	if err != nil {
		return domain.Question{}, err
	}
	// Eligibility filtering and the per-member lookup can diverge; guard
	// here too.
	if len(affiliations) == 0 {
		return domain.Question{}, domain.ErrNoAffiliation
	}

	correct := affiliations[s.intn(len(affiliations))]
	distractors, err := s.partyDistractors(ctx, correct.Key(), affiliations, difficulty-1)
	if err != nil {
		return domain.Question{}, err
	}

	options := make([]domain.Option, 0, difficulty)
	options = append(options, domain.Option{Key: correct.Key(), Label: correct.Party})
	for _, a := range distractors {
		options = append(options, domain.Option{Key: a.Key(), Label: a.Party})
	}
	s.shuffle(options)

	tok, err := s.codec.Mint(correct.Key(), domain.QuestionParty)
	if err != nil {
		return domain.Question{}, fmt.Errorf("mint token: %w", err)
	}
	return domain.Question{
		Type:      domain.QuestionParty,
		Prompt:    fmt.Sprintf(promptParty, subject.Name),
		Token:     tok,
		ImageURL:  subject.ImageURL,
		Birthdate: subject.Birthdate,
		Options:   options,
	}, nil
}

func (s *Service) resolveType(mode domain.GameMode) domain.QuestionType {
	switch mode {
	case domain.ModeParty:
		return domain.QuestionParty
	case domain.ModeMixed:
		if s.intn(2) == 0 {
			return domain.QuestionIdentity
		}
		return domain.QuestionParty
	default:
		return domain.QuestionIdentity
	}
}

func (s *Service) shuffle(options []domain.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

func (s *Service) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}
