package services

import "sync/atomic"

// SessionGuard hands out monotonically increasing session tokens. A consumer
// captures a token when its run starts and checks each arriving record
// against the latest one; records from superseded runs are dropped silently.
// This is cooperative: stale runs keep their remote calls, only their output
// is ignored.
type SessionGuard struct {
	current atomic.Int64
}

func NewSessionGuard() *SessionGuard {
	return &SessionGuard{}
}

// Begin activates a new session and returns its token, invalidating every
// previously issued token.
func (g *SessionGuard) Begin() int64 {
	return g.current.Add(1)
}

// Active reports whether the token still belongs to the latest session.
func (g *SessionGuard) Active(token int64) bool {
	return g.current.Load() == token
}
