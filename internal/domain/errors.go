package domain

import "errors"

var (
	// ErrNoData is returned when the eligible member pool is empty, i.e.
	// the dataset was never ingested. Surfaced as service-unavailable.
	ErrNoData = errors.New("no member data available")
	// ErrNoAffiliation is returned when a party question is requested but
	// no usable affiliation rows exist.
	ErrNoAffiliation = errors.New("no affiliation data available")
	// ErrInvalidRequest marks malformed client input (missing fields,
	// non-positive scores). Rejected without partial processing.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidToken covers every token failure, forged and malformed
	// alike, so responses never reveal which check tripped.
	ErrInvalidToken = errors.New("invalid token")
)
