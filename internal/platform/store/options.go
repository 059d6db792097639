package store

import (
	"oncallbot/internal/platform/logger"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithTracer overrides the query tracer (tests use this to capture SQL)
func WithTracer(t QueryTracer) Option {
	return func(s *Store) error {
		s.tracer = t
		return nil
	}
}
