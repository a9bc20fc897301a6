package handlers

import (
	"context"

	"lookup_bot/internal/ledger"
)

// Pinger is the slice of the storage backend readiness checks need.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Ledger      *ledger.Ledger
	Store       Pinger
	AdminAPIKey string
}

func NewHandler(l *ledger.Ledger, store Pinger, adminAPIKey string) *Handler {
	return &Handler{
		Ledger:      l,
		Store:       store,
		AdminAPIKey: adminAPIKey,
	}
}
