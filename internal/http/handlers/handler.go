package handlers

import (
	"time"

	"taskapi/internal/api"
)

// DefaultMaxBodyBytes caps request bodies read by Dispatch.
const DefaultMaxBodyBytes = 1 << 20

// Handler adapts gin requests to the transport-independent dispatcher.
type Handler struct {
	Dispatcher     *api.Dispatcher
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

func NewHandler(d *api.Dispatcher, requestTimeout time.Duration) *Handler {
	return &Handler{
		Dispatcher:     d,
		RequestTimeout: requestTimeout,
		MaxBodyBytes:   DefaultMaxBodyBytes,
	}
}
