package dto

import (
	"time"

	"github.com/spec-kit/friendship-service/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewAccountResponse maps a domain account, dropping credentials.
func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{ID: account.ID, Name: account.Name, Email: account.Email}
}

// NewAccountListResponse maps a slice, never returning nil.
func NewAccountListResponse(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, NewAccountResponse(acc))
	}
	return out
}

// SearchResponse is one page of account search results.
type SearchResponse struct {
	Count    int               `json:"count"`
	Next     *int              `json:"next"`
	Previous *int              `json:"previous"`
	Results  []AccountResponse `json:"results"`
}
