package storage

import (
	"context"

	"github.com/google/uuid"
)

// Accessor defers reading a user attribute until a log consumer needs it.
// The authenticated principal may only be attached to the request after the
// storage is created, so eager evaluation would miss it.
type Accessor func() any

// RequestStorage is the per-request correlation payload. It is installed once
// per logical request and read by any log call within that request's context.
// Values are never mutated in place; re-deriving storage for the same request
// keeps the UUID and replaces the accessors.
type RequestStorage struct {
	UUID        string
	UserID      Accessor
	UserDisplay Accessor

	// Trace correlation, populated from the transport when present.
	TraceID      string
	SpanID       string
	TraceSampled bool
}

type contextKey struct{}

// New creates a storage with a freshly minted correlation id.
func New(userID, userDisplay Accessor) *RequestStorage {
	return &RequestStorage{
		UUID:        uuid.New().String(),
		UserID:      userID,
		UserDisplay: userDisplay,
	}
}

// Derive re-derives a storage from ctx. If one is already installed its
// correlation id is preserved and only the identity accessors are refreshed,
// so every interception point within one logical request shares one id.
func Derive(ctx context.Context, userID, userDisplay Accessor) *RequestStorage {
	if existing := FromContext(ctx); existing != nil {
		return &RequestStorage{
			UUID:         existing.UUID,
			UserID:       userID,
			UserDisplay:  userDisplay,
			TraceID:      existing.TraceID,
			SpanID:       existing.SpanID,
			TraceSampled: existing.TraceSampled,
		}
	}
	return New(userID, userDisplay)
}

// WithStorage installs s into ctx. Visibility follows context semantics:
// anything called with the returned context (or a descendant) sees s,
// concurrent unrelated requests never do.
func WithStorage(ctx context.Context, s *RequestStorage) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the installed storage, or nil outside any intercepted
// request. Callers must treat nil as a normal case.
func FromContext(ctx context.Context) *RequestStorage {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(contextKey{}).(*RequestStorage)
	return s
}

// UserIDValue evaluates the user id accessor, nil-safe.
func (s *RequestStorage) UserIDValue() any {
	if s == nil || s.UserID == nil {
		return nil
	}
	return s.UserID()
}

// UserDisplayValue evaluates the user display accessor, nil-safe.
func (s *RequestStorage) UserDisplayValue() any {
	if s == nil || s.UserDisplay == nil {
		return nil
	}
	return s.UserDisplay()
}
