package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/gender"
)

// MemberRepository reads the parliament dataset from a SQLite file.
type MemberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, name, birthdate, image_url`

func (r *MemberRepository) RandomMember(ctx context.Context) (domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumns+`
		FROM members
		WHERE image_url IS NOT NULL
		ORDER BY RANDOM() LIMIT 1`)
	return scanMember(row)
}

func (r *MemberRepository) RandomMemberWithAffiliation(ctx context.Context) (domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumns+`
		FROM members
		WHERE image_url IS NOT NULL
		  AND EXISTS (
			SELECT 1 FROM memberships ms
			WHERE ms.member_id = members.id AND coalesce(ms.party, '') <> ''
		  )
		ORDER BY RANDOM() LIMIT 1`)
	return scanMember(row)
}

func (r *MemberRepository) Affiliations(ctx context.Context, memberID int64) ([]domain.Affiliation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT party_id, party
		FROM memberships
		WHERE member_id = ? AND coalesce(party, '') <> ''`, memberID)
	if err != nil {
		return nil, fmt.Errorf("affiliations: %w", err)
	}
	defer rows.Close()

	var out []domain.Affiliation
	for rows.Next() {
		var (
			a       = domain.Affiliation{MemberID: memberID}
			partyID sql.NullInt64
		)
		if err := rows.Scan(&partyID, &a.Party); err != nil {
			return nil, fmt.Errorf("affiliations: %w", err)
		}
		if partyID.Valid {
			a.PartyID = &partyID.Int64
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *MemberRepository) RandomDistractors(ctx context.Context, excludeID int64, limit int, g gender.Gender) ([]domain.Member, error) {
	q := `SELECT ` + memberColumns + `
		FROM members
		WHERE id <> ? AND image_url IS NOT NULL`
	switch g {
	case gender.Male:
		q += ` AND lower(name) LIKE '%son'`
	case gender.Female:
		q += ` AND lower(name) LIKE '%dóttir'`
	}
	q += ` ORDER BY RANDOM() LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, excludeID, limit)
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
	rows, err := r.db.QueryContext(ctx, `SELECT party_id, party FROM (
			SELECT DISTINCT party_id, party
			FROM memberships
			WHERE coalesce(party, '') <> ''
		)
		ORDER BY RANDOM() LIMIT ?`, limit*3)
	if err != nil {
		return nil, fmt.Errorf("parties: %w", err)
	}
	defer rows.Close()

	var fetched []domain.Affiliation
	for rows.Next() {
		var (
			a       domain.Affiliation
			partyID sql.NullInt64
		)
		if err := rows.Scan(&partyID, &a.Party); err != nil {
			return nil, fmt.Errorf("parties: %w", err)
		}
		if partyID.Valid {
			a.PartyID = &partyID.Int64
		}
		fetched = append(fetched, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.DistinctPartyChoices(fetched, exclude, limit), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (domain.Member, error) {
	var (
		m         domain.Member
		birthdate sql.NullString
		imageURL  sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Name, &birthdate, &imageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, domain.ErrNoData
		}
		return domain.Member{}, fmt.Errorf("scan member: %w", err)
	}
	m.Birthdate = birthdate.String
	m.ImageURL = imageURL.String
	return m, nil
}
