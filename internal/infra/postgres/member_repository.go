package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/gender"
)

// MemberRepository reads the ingested parliament dataset from Postgres.
type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const memberColumns = `id, name, birthdate, image_url`

func (r *MemberRepository) RandomMember(ctx context.Context) (domain.Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+`
		FROM members
		WHERE image_url IS NOT NULL
		ORDER BY random() LIMIT 1`)
	return scanMember(row)
}

func (r *MemberRepository) RandomMemberWithAffiliation(ctx context.Context) (domain.Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+`
		FROM members
		WHERE image_url IS NOT NULL
		  AND EXISTS (
			SELECT 1 FROM memberships ms
			WHERE ms.member_id = members.id AND coalesce(ms.party, '') <> ''
		  )
		ORDER BY random() LIMIT 1`)
	return scanMember(row)
}

func (r *MemberRepository) Affiliations(ctx context.Context, memberID int64) ([]domain.Affiliation, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT party_id, party
		FROM memberships
		WHERE member_id = $1 AND coalesce(party, '') <> ''`, memberID)
	if err != nil {
		return nil, fmt.Errorf("affiliations: %w", err)
	}
	defer rows.Close()

	var out []domain.Affiliation
	for rows.Next() {
		a := domain.Affiliation{MemberID: memberID}
		if err := rows.Scan(&a.PartyID, &a.Party); err != nil {
			return nil, fmt.Errorf("affiliations: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RandomDistractors applies the gender bias as one of a fixed set of
// predicates; nothing client-controlled is ever concatenated in.
func (r *MemberRepository) RandomDistractors(ctx context.Context, excludeID int64, limit int, g gender.Gender) ([]domain.Member, error) {
	q := `SELECT ` + memberColumns + `
		FROM members
		WHERE id <> $1 AND image_url IS NOT NULL`
	switch g {
	case gender.Male:
		q += ` AND lower(name) LIKE '%son'`
	case gender.Female:
		q += ` AND lower(name) LIKE '%dóttir'`
	}
	q += ` ORDER BY random() LIMIT $2`

	rows, err := r.pool.Query(ctx, q, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("distractors: %w", err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MemberRepository) RandomParties(ctx context.Context, exclude map[string]struct{}, limit int) ([]domain.Affiliation, error) {
	// Oversample: exclusion happens by composite key after the fetch, so a
	// single exact-size draw could come up short.
	rows, err := r.pool.Query(ctx, `SELECT party_id, party FROM (
			SELECT DISTINCT party_id, party
			FROM memberships
			WHERE coalesce(party, '') <> ''
		) parties
		ORDER BY random() LIMIT $1`, limit*3)
	if err != nil {
		return nil, fmt.Errorf("parties: %w", err)
	}
	defer rows.Close()

	var fetched []domain.Affiliation
	for rows.Next() {
		var a domain.Affiliation
		if err := rows.Scan(&a.PartyID, &a.Party); err != nil {
			return nil, fmt.Errorf("parties: %w", err)
		}
		fetched = append(fetched, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.DistinctPartyChoices(fetched, exclude, limit), nil
}

func scanMember(row pgx.Row) (domain.Member, error) {
	var (
		m         domain.Member
		birthdate *string
		imageURL  *string
	)
	if err := row.Scan(&m.ID, &m.Name, &birthdate, &imageURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, domain.ErrNoData
		}
		return domain.Member{}, fmt.Errorf("scan member: %w", err)
	}
	if birthdate != nil {
		m.Birthdate = *birthdate
	}
	if imageURL != nil {
		m.ImageURL = *imageURL
	}
	return m, nil
}
