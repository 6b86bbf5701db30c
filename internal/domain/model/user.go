package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a trading account.
type User struct {
	ID            string
	Name          string
	PasswordHash  string
	Balance       decimal.Decimal
	FavoriteStock string
	Holdings      []Holding
	CreatedAt     time.Time
}

// Holding is a single recorded buy.
type Holding struct {
	Symbol    string
	Quantity  int64
	Price     decimal.Decimal
	Timestamp time.Time
}

// Identity is the subset of a user carried inside session tokens.
type Identity struct {
	ID   string
	Name string
}

// Identity returns token-safe view of the user.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name}
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (u User) Clone() User {
	c := u
	if u.Holdings != nil {
		c.Holdings = make([]Holding, len(u.Holdings))
		copy(c.Holdings, u.Holdings)
	}
	return c
}

// Cost returns quantity multiplied by price.
func (h Holding) Cost() decimal.Decimal {
	return h.Price.Mul(decimal.NewFromInt(h.Quantity))
}
