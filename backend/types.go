// Copyright (c) 2025 BVK Chaitanya

package backend

import (
	"fmt"
	"time"
)

// User identifies an authenticated account on the backend service.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ValidateTokenResponse struct {
	User *User `json:"user"`
}

type WatchlistCoinsResponse struct {
	CoinIDs []string `json:"coinIds"`
}

type WatchlistToggleRequest struct {
	UserID string `json:"userId"`
	CoinID string `json:"coinId"`
}

type WatchlistToggleResponse struct {
	Added bool `json:"added"`
}

type WatchlistAddRequest struct {
	UserID string `json:"userId"`
	CoinID string `json:"coinId"`
}

type WatchlistBulkAddRequest struct {
	UserID  string   `json:"userId"`
	CoinIDs []string `json:"coinIds"`
}

type WatchlistBulkAddResponse struct {
	Added int `json:"added"`
}

type WatchlistCheckResponse struct {
	InWatchlist bool `json:"inWatchlist"`
}

type WatchlistStatsResponse struct {
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Error holds a failure response from the backend service.
type Error struct {
	StatusCode int
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status code %d", e.StatusCode)
	}
	return fmt.Sprintf("http status code %d: %s", e.StatusCode, e.Message)
}
