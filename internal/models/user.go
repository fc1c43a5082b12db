package models

import (
	"time"

	"github.com/google/uuid"

	"stagecoach/internal/analysis"
)

// User is an account row. APIKey is the bearer credential; Methodology is
// the coaching tradition that frames the user's recommendations.
type User struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	APIKey      string               `json:"-"`
	Methodology analysis.Methodology `json:"methodology"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// MethodologyFromString normalizes a stored methodology value, falling
// back to Stanislavski for unknown input.
func MethodologyFromString(s string) analysis.Methodology {
	m := analysis.Methodology(s)
	if !m.Valid() {
		return analysis.Stanislavski
	}
	return m
}

func NewUser(email string, methodology analysis.Methodology) *User {
	if !methodology.Valid() {
		methodology = analysis.Stanislavski
	}
	return &User{
		ID:          uuid.New().String(),
		Email:       email,
		APIKey:      uuid.New().String(),
		Methodology: methodology,
		CreatedAt:   time.Now(),
	}
}
