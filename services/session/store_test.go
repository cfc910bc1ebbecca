package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/orelvisrguez/assistravel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock of Repository that records subscribers
type MockRepository struct {
	mock.Mock

	mu           sync.Mutex
	listeners    []func(Event)
	unsubscribed int
}

func (m *MockRepository) GetCurrentIdentity(ctx context.Context, token string) (*models.Identity, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockRepository) OnAuthStateChange(fn func(Event)) func() {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.unsubscribed++
		m.mu.Unlock()
	}
}

func (m *MockRepository) publish(ev Event) {
	m.mu.Lock()
	listeners := append([]func(Event){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func identity(id string) *models.Identity {
	return &models.Identity{ID: id, Email: id + "@asistitravel.com"}
}

func profile(id string, role models.Role) *models.UserProfile {
	return &models.UserProfile{ID: id, Email: id + "@asistitravel.com", Role: role}
}

func TestStoreInit(t *testing.T) {
	t.Run("Authenticated with profile", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(identity("u1"), nil)
		repo.On("GetProfile", "u1").Return(profile("u1", models.RoleAdmin), nil)

		st := NewStore(repo, "tok")
		assert.Equal(t, StateUninitialized, st.State())
		st.Init(context.Background())

		snap := st.Snapshot()
		assert.Equal(t, StateAuthenticated, snap.State)
		assert.Equal(t, "u1", snap.Identity.ID)
		assert.True(t, snap.Capabilities.IsAdmin)
		assert.True(t, snap.Capabilities.CanDelete)
		assert.False(t, snap.Loading())
		repo.AssertExpectations(t)
	})

	t.Run("Anonymous without identity", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(nil, nil)

		st := NewStore(repo, "tok")
		st.Init(context.Background())

		snap := st.Snapshot()
		assert.Equal(t, StateAnonymous, snap.State)
		assert.Nil(t, snap.Identity)
		assert.False(t, snap.Authenticated())
		repo.AssertNotCalled(t, "GetProfile", mock.Anything)
	})

	t.Run("Missing profile stays authenticated", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(identity("u1"), nil)
		repo.On("GetProfile", "u1").Return(nil, nil)

		st := NewStore(repo, "tok")
		st.Init(context.Background())

		snap := st.Snapshot()
		assert.Equal(t, StateAuthenticated, snap.State)
		assert.Nil(t, snap.Profile)
		assert.False(t, snap.Capabilities.CanEdit)
		assert.False(t, snap.Capabilities.IsVisualizador)
	})

	t.Run("Profile error stays authenticated", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(identity("u1"), nil)
		repo.On("GetProfile", "u1").Return(nil, errors.New("network down"))

		st := NewStore(repo, "tok")
		st.Init(context.Background())

		assert.Equal(t, StateAuthenticated, st.State())
		assert.Nil(t, st.Snapshot().Profile)
	})

	t.Run("Init runs once", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(nil, nil).Once()

		st := NewStore(repo, "tok")
		st.Init(context.Background())
		st.Init(context.Background())

		repo.AssertNumberOfCalls(t, "GetCurrentIdentity", 1)
	})
}

func TestStoreEvents(t *testing.T) {
	t.Run("Sign-in exposes pending profile window", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(nil, nil)
		release := make(chan struct{})
		repo.On("GetProfile", "u1").Run(func(mock.Arguments) { <-release }).Return(profile("u1", models.RoleEditor), nil)

		st := NewStore(repo, "tok")
		st.Init(context.Background())
		assert.Equal(t, StateAnonymous, st.State())

		repo.publish(Event{Type: EventSignedIn, Token: "tok", Identity: identity("u1")})

		pending := st.Snapshot()
		assert.Equal(t, StateProfilePending, pending.State)
		assert.Equal(t, "u1", pending.Identity.ID)
		assert.Nil(t, pending.Profile)
		assert.True(t, pending.Loading())
		assert.False(t, pending.Capabilities.CanEdit)

		close(release)
		st.Wait()

		resolved := st.Snapshot()
		assert.Equal(t, StateAuthenticated, resolved.State)
		assert.True(t, resolved.Capabilities.CanEdit)
		assert.False(t, resolved.Capabilities.CanDelete)
	})

	t.Run("Sign-out clears identity", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(identity("u1"), nil)
		repo.On("GetProfile", "u1").Return(profile("u1", models.RoleAdmin), nil)

		st := NewStore(repo, "tok")
		st.Init(context.Background())
		repo.publish(Event{Type: EventSignedOut, Token: "tok"})

		snap := st.Snapshot()
		assert.Equal(t, StateAnonymous, snap.State)
		assert.Nil(t, snap.Identity)
		assert.False(t, snap.Capabilities.IsAdmin)
	})

	t.Run("Events for other tokens are ignored", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(identity("u1"), nil)
		repo.On("GetProfile", "u1").Return(profile("u1", models.RoleAdmin), nil)

		st := NewStore(repo, "tok")
		st.Init(context.Background())
		repo.publish(Event{Type: EventSignedOut, Token: "other"})

		assert.Equal(t, StateAuthenticated, st.State())
	})

	t.Run("Stale profile fetch is discarded", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(nil, nil)
		release := make(chan struct{})
		repo.On("GetProfile", "u1").Run(func(mock.Arguments) { <-release }).Return(profile("u1", models.RoleAdmin), nil)
		repo.On("GetProfile", "u2").Return(profile("u2", models.RoleVisualizador), nil)

		st := NewStore(repo, "tok")
		st.Init(context.Background())

		repo.publish(Event{Type: EventSignedIn, Token: "tok", Identity: identity("u1")})
		repo.publish(Event{Type: EventTokenRefreshed, Token: "tok", Identity: identity("u2")})
		close(release)
		st.Wait()

		snap := st.Snapshot()
		assert.Equal(t, "u2", snap.Identity.ID)
		assert.Equal(t, models.RoleVisualizador, snap.Profile.Role)
		assert.False(t, snap.Capabilities.IsAdmin)
	})

	t.Run("Refresh of the same identity keeps its profile", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(identity("u1"), nil)
		repo.On("GetProfile", "u1").Return(profile("u1", models.RoleEditor), nil).Once()

		st := NewStore(repo, "tok")
		st.Init(context.Background())

		repo.publish(Event{Type: EventTokenRefreshed, Token: "tok", Identity: identity("u1")})

		snap := st.Snapshot()
		assert.Equal(t, StateAuthenticated, snap.State)
		assert.False(t, snap.Loading())
		assert.True(t, snap.Capabilities.CanEdit)
		repo.AssertNumberOfCalls(t, "GetProfile", 1)
	})

	t.Run("Refresh during the initial load is left to the load", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").
			Run(func(mock.Arguments) {
				repo.publish(Event{Type: EventTokenRefreshed, Token: "tok", Identity: identity("u1")})
			}).
			Return(identity("u1"), nil)
		repo.On("GetProfile", "u1").Return(profile("u1", models.RoleAdmin), nil).Once()

		st := NewStore(repo, "tok")
		st.Init(context.Background())
		st.Wait()

		snap := st.Snapshot()
		assert.Equal(t, StateAuthenticated, snap.State)
		assert.True(t, snap.Capabilities.CanDelete)
		repo.AssertNumberOfCalls(t, "GetProfile", 1)
	})

	t.Run("User update refreshes matching identity", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCurrentIdentity", "tok").Return(identity("u1"), nil)
		repo.On("GetProfile", "u1").Return(profile("u1", models.RoleVisualizador), nil).Once()
		repo.On("GetProfile", "u1").Return(profile("u1", models.RoleEditor), nil).Once()

		st := NewStore(repo, "tok")
		st.Init(context.Background())
		assert.False(t, st.Snapshot().Capabilities.CanEdit)

		repo.publish(Event{Type: EventUserUpdated, Identity: identity("someone-else")})
		assert.Equal(t, StateAuthenticated, st.State())

		repo.publish(Event{Type: EventUserUpdated, Identity: identity("u1")})
		st.Wait()
		assert.True(t, st.Snapshot().Capabilities.CanEdit)
	})
}

func TestStoreClose(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetCurrentIdentity", "tok").Return(nil, nil)
	release := make(chan struct{})
	repo.On("GetProfile", "u1").Run(func(mock.Arguments) { <-release }).Return(profile("u1", models.RoleAdmin), nil)

	st := NewStore(repo, "tok")
	st.Init(context.Background())
	repo.publish(Event{Type: EventSignedIn, Token: "tok", Identity: identity("u1")})

	st.Close()
	st.Close()
	close(release)
	st.Wait()

	assert.Equal(t, 1, repo.unsubscribed)
	assert.Equal(t, StateProfilePending, st.State())
	assert.Nil(t, st.Snapshot().Profile)
}

func TestStoreRevalidate(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetCurrentIdentity", "tok").Return(identity("u1"), nil).Once()
	repo.On("GetCurrentIdentity", "tok").Return(nil, nil).Once()
	repo.On("GetProfile", "u1").Return(profile("u1", models.RoleEditor), nil)

	st := NewStore(repo, "tok")
	st.Init(context.Background())
	assert.Equal(t, StateAuthenticated, st.State())

	st.Revalidate(context.Background())
	assert.Equal(t, StateAnonymous, st.State())
}

func TestSnapshotSubject(t *testing.T) {
	snap := Snapshot{State: StateProfilePending, Identity: identity("u1")}
	subject := snap.Subject()
	assert.True(t, subject.Loading)
	assert.Equal(t, "u1", subject.Identity.ID)
}
