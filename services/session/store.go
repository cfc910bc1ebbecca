// Package session holds the per-browser-session view of who is signed in and
// with which role profile.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services/authz"
)

// State of a session store
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAnonymous
	// StateProfilePending: identity known, profile fetch in flight
	StateProfilePending
	// StateAuthenticated: identity known, profile resolved (possibly to none)
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateProfilePending:
		return "profile_pending"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// EventType names a change pushed by the repository
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventUserUpdated    EventType = "USER_UPDATED"
)

// Event is an (event, session) pair delivered to subscribers
type Event struct {
	Type     EventType
	Token    string
	Identity *models.Identity
}

// Repository is the authentication surface a Store reads from
type Repository interface {
	GetCurrentIdentity(ctx context.Context, token string) (*models.Identity, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	OnAuthStateChange(fn func(Event)) (unsubscribe func())
}

// Snapshot is an immutable copy of the store at one instant
type Snapshot struct {
	State        State               `json:"-"`
	Identity     *models.Identity    `json:"user"`
	Profile      *models.UserProfile `json:"profile"`
	Capabilities authz.Capabilities  `json:"capabilities"`
}

// Loading reports whether the guard should show only a loading indicator
func (s Snapshot) Loading() bool {
	return s.State == StateUninitialized || s.State == StateLoading || s.State == StateProfilePending
}

// Authenticated reports whether an identity is present
func (s Snapshot) Authenticated() bool {
	return s.Identity != nil && (s.State == StateAuthenticated || s.State == StateProfilePending)
}

// Subject adapts the snapshot for guard evaluation
func (s Snapshot) Subject() authz.Subject {
	return authz.Subject{
		Loading:      s.Loading(),
		Identity:     s.Identity,
		Profile:      s.Profile,
		Capabilities: s.Capabilities,
	}
}

// Store tracks one session token. Change events set the identity at once and
// resolve the profile in the background; results from superseded fetches are
// discarded by generation.
type Store struct {
	repo  Repository
	token string

	initOnce sync.Once

	mu          sync.RWMutex
	state       State
	identity    *models.Identity
	profile     *models.UserProfile
	caps        authz.Capabilities
	generation  uint64
	unsubscribe func()
	closed      bool
	lastAccess  time.Time
	verifiedAt  time.Time

	// fetches tracks background profile loads so Close and tests can wait
	fetches sync.WaitGroup
}

// NewStore creates an uninitialized store for token
func NewStore(repo Repository, token string) *Store {
	return &Store{
		repo:       repo,
		token:      token,
		state:      StateUninitialized,
		lastAccess: time.Now(),
	}
}

// Init subscribes to change notifications, looks up the identity and then its
// profile. Only the first call has any effect; concurrent callers wait for it.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.state = StateLoading
		gen := s.generation
		s.mu.Unlock()

		unsubscribe := s.repo.OnAuthStateChange(s.handleEvent)
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			unsubscribe()
			return
		}
		s.unsubscribe = unsubscribe
		s.mu.Unlock()

		s.load(ctx, gen)
	})
}

// load resolves identity then profile synchronously for generation gen
func (s *Store) load(ctx context.Context, gen uint64) {
	identity, err := s.repo.GetCurrentIdentity(ctx, s.token)
	if err != nil {
		log.Printf("[SESSION] Identity lookup failed: %v", err)
	}

	if identity == nil {
		s.mu.Lock()
		if s.generation == gen {
			s.setAnonymousLocked()
			s.verifiedAt = time.Now()
		}
		s.mu.Unlock()
		return
	}

	profile, err := s.repo.GetProfile(ctx, identity.ID)
	if err != nil {
		log.Printf("[SESSION] Profile lookup failed for user %s: %v", identity.ID, err)
		profile = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.identity = identity
	s.profile = profile
	s.caps = authz.EvaluateProfile(profile)
	s.state = StateAuthenticated
	s.verifiedAt = time.Now()
}

// handleEvent applies a repository change without blocking the publisher
func (s *Store) handleEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.matchesLocked(ev) {
		return
	}

	switch ev.Type {
	case EventSignedOut:
		s.generation++
		s.setAnonymousLocked()
	case EventTokenRefreshed:
		if ev.Identity == nil {
			return
		}
		// the initial load in flight resolves identity and profile itself
		if s.state == StateLoading {
			return
		}
		if s.identity != nil && s.identity.ID == ev.Identity.ID {
			s.identity = ev.Identity
			s.verifiedAt = time.Now()
			return
		}
		s.beginProfileFetchLocked(ev.Identity)
	case EventSignedIn, EventUserUpdated:
		if ev.Identity == nil {
			return
		}
		s.beginProfileFetchLocked(ev.Identity)
	}
}

func (s *Store) matchesLocked(ev Event) bool {
	if ev.Type == EventUserUpdated {
		return s.identity != nil && ev.Identity != nil && s.identity.ID == ev.Identity.ID
	}
	return ev.Token == s.token
}

// beginProfileFetchLocked sets identity, enters ProfilePending and starts the
// background fetch. Caller holds s.mu.
func (s *Store) beginProfileFetchLocked(identity *models.Identity) {
	s.generation++
	gen := s.generation
	s.identity = identity
	s.profile = nil
	s.caps = authz.Capabilities{}
	s.state = StateProfilePending
	s.verifiedAt = time.Now()

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		profile, err := s.repo.GetProfile(context.Background(), identity.ID)
		if err != nil {
			log.Printf("[SESSION] Profile refresh failed for user %s: %v", identity.ID, err)
			profile = nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.generation != gen {
			return
		}
		s.profile = profile
		s.caps = authz.EvaluateProfile(profile)
		s.state = StateAuthenticated
	}()
}

func (s *Store) setAnonymousLocked() {
	s.identity = nil
	s.profile = nil
	s.caps = authz.Capabilities{}
	s.state = StateAnonymous
}

// Revalidate re-checks the identity behind the token. A vanished identity
// behaves like a sign-out and a different one like a sign-in.
func (s *Store) Revalidate(ctx context.Context) {
	identity, err := s.repo.GetCurrentIdentity(ctx, s.token)
	if err != nil {
		log.Printf("[SESSION] Revalidation failed: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.verifiedAt = time.Now()
	switch {
	case identity == nil:
		if s.state != StateAnonymous {
			s.generation++
			s.setAnonymousLocked()
		}
	case s.identity == nil || s.identity.ID != identity.ID:
		s.beginProfileFetchLocked(identity)
	}
}

// Snapshot returns the current state and marks the store as used
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	return Snapshot{
		State:        s.state,
		Identity:     s.identity,
		Profile:      s.profile,
		Capabilities: s.caps,
	}
}

// State returns the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the session token the store tracks
func (s *Store) Token() string {
	return s.token
}

func (s *Store) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}

func (s *Store) verifiedSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifiedAt
}

// Wait blocks until background profile fetches started so far have finished
func (s *Store) Wait() {
	s.fetches.Wait()
}

// Close unsubscribes from change notifications and discards in-flight fetches
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
