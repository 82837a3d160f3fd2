// Package token mints and verifies the signed answer tokens that make the
// quiz stateless: the server embeds the correct answer in the token instead
// of remembering it, and trusts nothing the client echoes back until the
// signature checks out.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"thingmadurinn/internal/domain"
)

// nowFunc is swapped in tests for deterministic issued-at claims.
var nowFunc = time.Now

type claims struct {
	AnswerKey    string `json:"ans"`
	QuestionType string `json:"qt"`
	jwt.RegisteredClaims
}

// Codec signs answer payloads with a process-wide HMAC key. The key must
// not change during the process lifetime or outstanding tokens become
// unverifiable.
type Codec struct {
	key []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{key: []byte(secret)}
}

// Mint binds an answer key and question type into a signed opaque token.
func (c *Codec) Mint(answerKey string, qt domain.QuestionType) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		AnswerKey:    answerKey,
		QuestionType: string(qt),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "thingmadurinn",
			IssuedAt: jwt.NewNumericDate(nowFunc()),
		},
	})
	return t.SignedString(c.key)
}

// Verify decodes a client-supplied token. Every failure mode collapses to
// domain.ErrInvalidToken so a response never reveals whether the signature
// or the payload structure was at fault.
func (c *Codec) Verify(raw string) (string, domain.QuestionType, error) {
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", "", domain.ErrInvalidToken
	}
	cl, ok := parsed.Claims.(*claims)
	if !ok || cl.AnswerKey == "" {
		return "", "", domain.ErrInvalidToken
	}
	return cl.AnswerKey, domain.QuestionType(cl.QuestionType), nil
}
