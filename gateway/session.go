package gateway

import "sync"

// sessionMode distinguishes a brand new connection from one that intends
// to resume an existing session.
type sessionMode int

const (
	modeFresh sessionMode = iota
	modeResuming
)

// session holds the mutable per-connection state that must survive across
// reconnects: the session id and resume URL handed out by READY, the last
// observed sequence number, and whether the next connection should
// identify or resume.
//
// All fields are guarded by mu; readers and writers span the reader
// goroutine (which records sequences and READY), the reconnect controller
// (which invalidates or resets it between connections), and the heart
// goroutine (which only reads the sequence).
type session struct {
	mu sync.RWMutex

	sessionID        string
	resumeGatewayURL string
	lastSequence     *int64
	mode             sessionMode
}

func newSession() *session {
	return &session{mode: modeFresh}
}

func (s *session) canResume() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode == modeResuming && s.sessionID != "" && s.lastSequence != nil
}

func (s *session) setSequence(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSequence == nil || seq > *s.lastSequence {
		s.lastSequence = &seq
	}
}

func (s *session) sequence() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSequence == nil {
		return nil
	}
	seq := *s.lastSequence
	return &seq
}

// markReady records the identifiers handed out by a READY dispatch and
// switches the session into resume mode for subsequent connections.
func (s *session) markReady(sessionID, resumeGatewayURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
	s.resumeGatewayURL = resumeGatewayURL
	s.mode = modeResuming
}

// invalidate clears session identity and forces the next connection to
// identify fresh. Used on a non-resumable Invalid Session.
func (s *session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = ""
	s.resumeGatewayURL = ""
	s.lastSequence = nil
	s.mode = modeFresh
}

// resetForFreshConnect clears only the sequence, used when a connection
// decides to identify fresh without a hard session invalidation (e.g. no
// prior session exists yet).
func (s *session) resetForFreshConnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSequence = nil
}

func (s *session) snapshot() (id, resumeURL string, mode sessionMode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID, s.resumeGatewayURL, s.mode
}
