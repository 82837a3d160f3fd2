package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/gender"
)

// MemberRepository is an in-memory corpus, useful for tests and for demo
// runs without a database.
type MemberRepository struct {
	members      []domain.Member
	affiliations map[int64][]domain.Affiliation

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMemberRepository(members []domain.Member, affiliations map[int64][]domain.Affiliation) *MemberRepository {
	return &MemberRepository{
		members:      members,
		affiliations: affiliations,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *MemberRepository) RandomMember(_ context.Context) (domain.Member, error) {
	return r.pick(func(m domain.Member) bool {
		return m.ImageURL != ""
	})
}

func (r *MemberRepository) RandomMemberWithAffiliation(_ context.Context) (domain.Member, error) {
	return r.pick(func(m domain.Member) bool {
		return m.ImageURL != "" && len(r.partyRows(m.ID)) > 0
	})
}

func (r *MemberRepository) Affiliations(_ context.Context, memberID int64) ([]domain.Affiliation, error) {
	rows := r.partyRows(memberID)
	return domain.DistinctPartyChoices(rows, nil, len(rows)), nil
}

func (r *MemberRepository) RandomDistractors(_ context.Context, excludeID int64, limit int, g gender.Gender) ([]domain.Member, error) {
	pool := make([]domain.Member, 0, len(r.members))
	for _, m := range r.members {
		if m.ID == excludeID || m.ImageURL == "" {
			continue
		}
		if g != gender.Unknown && gender.Classify(m.Name) != g {
			continue
		}
		pool = append(pool, m)
	}
	r.shuffleMembers(pool)
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

func (r *MemberRepository) RandomParties(_ context.Context, exclude map[string]struct{}, limit int) ([]domain.Affiliation, error) {
	rows := make([]domain.Affiliation, 0)
	for _, affs := range r.affiliations {
		for _, a := range affs {
			if a.Party != "" {
				rows = append(rows, a)
			}
		}
	}
	r.shuffleAffiliations(rows)
	return domain.DistinctPartyChoices(rows, exclude, limit), nil
}

func (r *MemberRepository) pick(eligible func(domain.Member) bool) (domain.Member, error) {
	pool := make([]domain.Member, 0, len(r.members))
	for _, m := range r.members {
		if eligible(m) {
			pool = append(pool, m)
		}
	}
	if len(pool) == 0 {
		return domain.Member{}, domain.ErrNoData
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return pool[r.rnd.Intn(len(pool))], nil
}

func (r *MemberRepository) partyRows(memberID int64) []domain.Affiliation {
	rows := make([]domain.Affiliation, 0)
	for _, a := range r.affiliations[memberID] {
		if a.Party != "" {
			rows = append(rows, a)
		}
	}
	return rows
}

func (r *MemberRepository) shuffleMembers(pool []domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
}

func (r *MemberRepository) shuffleAffiliations(pool []domain.Affiliation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
}
