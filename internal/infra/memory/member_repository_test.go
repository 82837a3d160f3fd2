package memory

import (
	"context"
	"errors"
	"testing"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/gender"
)

func TestRandomMemberRequiresImage(t *testing.T) {
	repo := NewMemberRepository([]domain.Member{
		{ID: 1, Name: "Jón Jónsson"},
		{ID: 2, Name: "Guðrún Jónsdóttir", ImageURL: "https://img.test/2.jpg"},
	}, nil)

	for i := 0; i < 10; i++ {
		m, err := repo.RandomMember(context.Background())
		if err != nil {
			t.Fatalf("random member: %v", err)
		}
		if m.ID != 2 {
			t.Fatalf("ineligible member selected: %+v", m)
		}
	}

	empty := NewMemberRepository([]domain.Member{{ID: 1, Name: "Jón Jónsson"}}, nil)
	if _, err := empty.RandomMember(context.Background()); !errors.Is(err, domain.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestRandomMemberWithAffiliationFiltersEmptyParties(t *testing.T) {
	repo := NewMemberRepository([]domain.Member{
		{ID: 1, Name: "Jón Jónsson", ImageURL: "https://img.test/1.jpg"},
		{ID: 2, Name: "Guðrún Jónsdóttir", ImageURL: "https://img.test/2.jpg"},
	}, map[int64][]domain.Affiliation{
		1: {{MemberID: 1, Party: ""}},
		2: {{MemberID: 2, Party: "Píratar"}},
	})

	for i := 0; i < 10; i++ {
		m, err := repo.RandomMemberWithAffiliation(context.Background())
		if err != nil {
			t.Fatalf("random member: %v", err)
		}
		if m.ID != 2 {
			t.Fatalf("member without usable affiliation selected: %+v", m)
		}
	}
}

func TestRandomDistractorsGenderFilterAndExclusion(t *testing.T) {
	repo := NewMemberRepository([]domain.Member{
		{ID: 1, Name: "Jón Jónsson", ImageURL: "https://img.test/1.jpg"},
		{ID: 2, Name: "Einar Gunnarsson", ImageURL: "https://img.test/2.jpg"},
		{ID: 3, Name: "Ólafur Þórsson", ImageURL: "https://img.test/3.jpg"},
		{ID: 4, Name: "Guðrún Jónsdóttir", ImageURL: "https://img.test/4.jpg"},
	}, nil)

	got, err := repo.RandomDistractors(context.Background(), 1, 5, gender.Male)
	if err != nil {
		t.Fatalf("distractors: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 male candidates, got %d", len(got))
	}
	for _, m := range got {
		if m.ID == 1 || gender.Classify(m.Name) != gender.Male {
			t.Fatalf("bad candidate %+v", m)
		}
	}

	all, err := repo.RandomDistractors(context.Background(), 1, 5, gender.Unknown)
	if err != nil {
		t.Fatalf("distractors: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 unfiltered candidates, got %d", len(all))
	}
}

func TestRandomPartiesExcludesAndDeduplicates(t *testing.T) {
	id := func(v int64) *int64 { return &v }
	repo := NewMemberRepository(nil, map[int64][]domain.Affiliation{
		1: {{MemberID: 1, PartyID: id(35), Party: "Sjálfstæðisflokkur"}},
		2: {{MemberID: 2, PartyID: id(35), Party: "Sjálfstæðisflokkur"}, {MemberID: 2, PartyID: id(23), Party: "Framsóknarflokkur"}},
		3: {{MemberID: 3, Party: "Alþýðuflokkur"}},
	})

	exclude := map[string]struct{}{
		domain.Affiliation{PartyID: id(35), Party: "Sjálfstæðisflokkur"}.Key(): {},
	}
	got, err := repo.RandomParties(context.Background(), exclude, 5)
	if err != nil {
		t.Fatalf("parties: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 parties, got %+v", got)
	}
	for _, a := range got {
		if a.Party == "Sjálfstæðisflokkur" {
			t.Fatalf("excluded party returned")
		}
	}
}
