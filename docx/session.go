package docx

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session owns a Document for its editing lifetime. It carries the
// monotonically increasing document-revision counter that keys the
// extraction cache: every mutating operation bumps the counter, which
// implicitly invalidates any cache keyed on an older value.
//
// A session is single-goroutine: operations against one document execute
// serially, so no locking is needed. Independent sessions share no state.
type Session struct {
	id  string
	doc *Document
	rev int64
	log *zap.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger. The default discards everything.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSession opens an editing session over doc.
func NewSession(doc *Document, opts ...SessionOption) *Session {
	s := &Session{
		id:  uuid.NewString(),
		doc: doc,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log.Debug("session opened", zap.String("session", s.id))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Document returns the live document tree owned by this session.
func (s *Session) Document() *Document { return s.doc }

// Revision returns the current document-revision counter.
func (s *Session) Revision() int64 { return s.rev }

// Bump increments the document-revision counter after a mutating operation
// and returns the new value. This is the cache-invalidation hook: extraction
// results are keyed by the counter, so a bump makes them stale.
func (s *Session) Bump() int64 {
	s.rev++
	s.log.Debug("document mutated",
		zap.String("session", s.id),
		zap.Int64("revision", s.rev))
	return s.rev
}

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.log }
