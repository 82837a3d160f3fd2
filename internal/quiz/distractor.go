package quiz

import (
	"context"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/gender"
)

// memberDistractors picks count wrong members for an identity question.
// It first draws gender-biased candidates, then tops up from the whole
// corpus, skipping the subject and anything already chosen. On a tiny
// corpus the result may be short; callers tolerate that.
func (s *Service) memberDistractors(ctx context.Context, correctID int64, count int, g gender.Gender) ([]domain.Member, error) {
	if count <= 0 {
		return nil, nil
	}

	chosen, err := s.members.RandomDistractors(ctx, correctID, count, g)
	if err != nil {
		return nil, err
	}
	if len(chosen) >= count {
		return chosen[:count], nil
	}

	seen := make(map[int64]struct{}, count+1)
	seen[correctID] = struct{}{}
	for _, m := range chosen {
		seen[m.ID] = struct{}{}
	}

	// An unfiltered draw of count rows is always enough to fill the gap:
	// at most len(chosen) of them can be duplicates.
	extra, err := s.members.RandomDistractors(ctx, correctID, count, gender.Unknown)
	if err != nil {
		return nil, err
	}
	for _, m := range extra {
		if len(chosen) == count {
			break
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		chosen = append(chosen, m)
	}
	return chosen, nil
}

// partyDistractors picks count wrong party identities. If the corpus-wide
// draw comes up short it pads from the subject's own other affiliations
// before giving up short.
func (s *Service) partyDistractors(ctx context.Context, correctKey string, own []domain.Affiliation, count int) ([]domain.Affiliation, error) {
	if count <= 0 {
		return nil, nil
	}

	exclude := map[string]struct{}{correctKey: {}}
	chosen, err := s.members.RandomParties(ctx, exclude, count)
	if err != nil {
		return nil, err
	}
	if len(chosen) >= count {
		return chosen[:count], nil
	}

	for _, a := range chosen {
		exclude[a.Key()] = struct{}{}
	}
	for _, a := range own {
		if len(chosen) == count {
			break
		}
		if _, skip := exclude[a.Key()]; skip {
			continue
		}
		exclude[a.Key()] = struct{}{}
		chosen = append(chosen, a)
	}
	return chosen, nil
}
