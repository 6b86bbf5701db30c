package dto

import (
	"time"

	"github.com/polkiloo/tradedesk/internal/domain/model"
)

// CredentialsRequest is the sign up, sign in and delete payload.
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// FavoriteStockRequest carries the symbol to remember for the user.
type FavoriteStockRequest struct {
	FavoriteStock string `json:"favoriteStock" binding:"required"`
}

// UserResponse is the public view of an account returned on sign in.
type UserResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// SignInResponse pairs the public view with a session token.
type SignInResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// IdentityResponse echoes the identity carried by a valid token.
type IdentityResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HoldingResponse is one recorded buy.
type HoldingResponse struct {
	Symbol    string    `json:"symbol"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// AccountResponse is the full account view including holdings.
type AccountResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Balance       float64           `json:"balance"`
	FavoriteStock string            `json:"favoriteStock,omitempty"`
	Stocks        []HoldingResponse `json:"stocks"`
}

// NewUserResponse converts a user into its public view.
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Balance: u.Balance.InexactFloat64()}
}

// NewAccountResponse converts a user into the account view.
func NewAccountResponse(u *model.User) AccountResponse {
	resp := AccountResponse{
		ID:            u.ID,
		Name:          u.Name,
		Balance:       u.Balance.InexactFloat64(),
		FavoriteStock: u.FavoriteStock,
		Stocks:        make([]HoldingResponse, 0, len(u.Holdings)),
	}
	for _, h := range u.Holdings {
		resp.Stocks = append(resp.Stocks, HoldingResponse{
			Symbol:    h.Symbol,
			Quantity:  h.Quantity,
			Price:     h.Price.InexactFloat64(),
			Timestamp: h.Timestamp,
		})
	}
	return resp
}
