package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/stretchr/testify/assert"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []session.Event
}

func (r *eventRecorder) record(ev session.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *eventRecorder) types() []session.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Asistencia2024!")
	assert.NoError(t, err)
	assert.NotEqual(t, "Asistencia2024!", hash)
	assert.True(t, CheckPassword("Asistencia2024!", hash))
	assert.False(t, CheckPassword("WrongPass", hash))
}

func TestSignIn(t *testing.T) {
	database := setupTestDB(t)
	auth := NewAuthClient(database, testConfig())
	createConfirmedUser(t, database, "ana@asistitravel.com", "Asistencia2024!", models.RoleEditor)

	rec := &eventRecorder{}
	unsubscribe := auth.OnAuthStateChange(rec.record)
	defer unsubscribe()

	t.Run("Valid credentials", func(t *testing.T) {
		sess, err := auth.SignIn(context.Background(), " ANA@asistitravel.com ", "Asistencia2024!", "127.0.0.1", "test")
		assert.NoError(t, err)
		assert.Len(t, sess.Token, SessionTokenLength*2)
		assert.WithinDuration(t, time.Now().Add(DefaultSessionDuration), sess.ExpiresAt, 10*time.Second)
		assert.Equal(t, []session.EventType{session.EventSignedIn}, rec.types())
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := auth.SignIn(context.Background(), "ana@asistitravel.com", "nope", "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, err := auth.SignIn(context.Background(), "ghost@asistitravel.com", "Asistencia2024!", "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unconfirmed account", func(t *testing.T) {
		hash, _ := HashPassword("Asistencia2024!")
		database.Create(&models.User{Email: "new@asistitravel.com", Password: hash})

		_, err := auth.SignIn(context.Background(), "new@asistitravel.com", "Asistencia2024!", "", "")
		assert.ErrorIs(t, err, ErrEmailNotConfirmed)
	})
}

func TestSignUpAndConfirm(t *testing.T) {
	database := setupTestDB(t)
	cfg := testConfig()
	auth := NewAuthClient(database, cfg)

	sent := make(chan *Email, 1)
	auth.Mailer = func(_ *config.Config, email *Email) error {
		sent <- email
		return nil
	}

	user, err := auth.SignUp(context.Background(), "Luis@AsistiTravel.com", "Asistencia2024!", "es")
	assert.NoError(t, err)
	assert.Equal(t, "luis@asistitravel.com", user.Email)
	assert.False(t, user.IsConfirmed())

	var email *Email
	select {
	case email = <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation email was not sent")
	}
	assert.Equal(t, []string{"luis@asistitravel.com"}, email.To)
	assert.Contains(t, email.TextBody, "/auth/confirm?token=")

	link := email.TextBody[strings.Index(email.TextBody, "http"):]
	link = strings.TrimSpace(strings.SplitN(link, "\n", 2)[0])
	u, err := url.Parse(link)
	assert.NoError(t, err)
	token := u.Query().Get("token")

	_, err = auth.SignIn(context.Background(), "luis@asistitravel.com", "Asistencia2024!", "", "")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	confirmed, err := auth.ConfirmEmail(context.Background(), token)
	assert.NoError(t, err)
	assert.True(t, confirmed.IsConfirmed())

	_, err = auth.ConfirmEmail(context.Background(), token)
	assert.NoError(t, err)

	_, err = auth.SignIn(context.Background(), "luis@asistitravel.com", "Asistencia2024!", "", "")
	assert.NoError(t, err)
}

func TestSignUpErrors(t *testing.T) {
	database := setupTestDB(t)
	auth := NewAuthClient(database, testConfig())
	auth.Mailer = func(*config.Config, *Email) error { return nil }
	createConfirmedUser(t, database, "ana@asistitravel.com", "Asistencia2024!", "")

	_, err := auth.SignUp(context.Background(), "ana@asistitravel.com", "Asistencia2024!", "es")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = auth.SignUp(context.Background(), "otra@asistitravel.com", "corta", "es")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = auth.SignUp(context.Background(), "not-an-email", "Asistencia2024!", "es")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestConfirmEmailRejectsBadTokens(t *testing.T) {
	database := setupTestDB(t)
	cfg := testConfig()
	auth := NewAuthClient(database, cfg)

	_, err := auth.ConfirmEmail(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidConfirmationToken)

	expired, _ := IssueConfirmationToken(cfg.SessionSecret, "u1", "a@b.com", time.Now().Add(-48*time.Hour))
	_, err = auth.ConfirmEmail(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidConfirmationToken)

	otherSecret, _ := IssueConfirmationToken("another-secret", "u1", "a@b.com", time.Now())
	_, err = auth.ConfirmEmail(context.Background(), otherSecret)
	assert.ErrorIs(t, err, ErrInvalidConfirmationToken)

	unknownUser, _ := IssueConfirmationToken(cfg.SessionSecret, "missing", "a@b.com", time.Now())
	_, err = auth.ConfirmEmail(context.Background(), unknownUser)
	assert.ErrorIs(t, err, ErrInvalidConfirmationToken)
}

func TestGetCurrentIdentity(t *testing.T) {
	database := setupTestDB(t)
	auth := NewAuthClient(database, testConfig())
	user := createConfirmedUser(t, database, "ana@asistitravel.com", "Asistencia2024!", models.RoleAdmin)

	sess, err := auth.SignIn(context.Background(), "ana@asistitravel.com", "Asistencia2024!", "", "")
	assert.NoError(t, err)

	t.Run("Valid token", func(t *testing.T) {
		identity, err := auth.GetCurrentIdentity(context.Background(), sess.Token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, identity.ID)
		assert.Equal(t, "ana@asistitravel.com", identity.Email)
	})

	t.Run("Unknown token", func(t *testing.T) {
		identity, err := auth.GetCurrentIdentity(context.Background(), "unknown")
		assert.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("Refresh near expiry", func(t *testing.T) {
		database.Model(&models.Session{}).Where("id = ?", sess.ID).Update("expires_at", time.Now().Add(time.Hour))

		rec := &eventRecorder{}
		unsubscribe := auth.OnAuthStateChange(rec.record)
		defer unsubscribe()

		identity, err := auth.GetCurrentIdentity(context.Background(), sess.Token)
		assert.NoError(t, err)
		assert.NotNil(t, identity)
		assert.Equal(t, []session.EventType{session.EventTokenRefreshed}, rec.types())

		var refreshed models.Session
		database.First(&refreshed, "id = ?", sess.ID)
		assert.True(t, refreshed.ExpiresAt.After(time.Now().Add(24*time.Hour)))
	})

	t.Run("Expired token", func(t *testing.T) {
		database.Model(&models.Session{}).Where("id = ?", sess.ID).Update("expires_at", time.Now().Add(-time.Minute))

		identity, err := auth.GetCurrentIdentity(context.Background(), sess.Token)
		assert.NoError(t, err)
		assert.Nil(t, identity)

		var count int64
		database.Model(&models.Session{}).Where("id = ?", sess.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestGetProfile(t *testing.T) {
	database := setupTestDB(t)
	auth := NewAuthClient(database, testConfig())
	withProfile := createConfirmedUser(t, database, "a@asistitravel.com", "Asistencia2024!", models.RoleEditor)
	withoutProfile := createConfirmedUser(t, database, "b@asistitravel.com", "Asistencia2024!", "")

	profile, err := auth.GetProfile(context.Background(), withProfile.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleEditor, profile.Role)

	profile, err = auth.GetProfile(context.Background(), withoutProfile.ID)
	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestSetProfileRole(t *testing.T) {
	database := setupTestDB(t)
	auth := NewAuthClient(database, testConfig())
	user := createConfirmedUser(t, database, "a@asistitravel.com", "Asistencia2024!", "")

	rec := &eventRecorder{}
	unsubscribe := auth.OnAuthStateChange(rec.record)
	defer unsubscribe()

	profile, err := auth.SetProfileRole(context.Background(), user.ID, models.RoleVisualizador)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleVisualizador, profile.Role)

	profile, err = auth.SetProfileRole(context.Background(), user.ID, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, profile.Role)

	var count int64
	database.Model(&models.UserProfile{}).Where("id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []session.EventType{session.EventUserUpdated, session.EventUserUpdated}, rec.types())

	_, err = auth.SetProfileRole(context.Background(), user.ID, "Root")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = auth.SetProfileRole(context.Background(), "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	users, err := auth.ListUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Profile.Role)
}

func TestSignOutAndUnsubscribe(t *testing.T) {
	database := setupTestDB(t)
	auth := NewAuthClient(database, testConfig())
	createConfirmedUser(t, database, "a@asistitravel.com", "Asistencia2024!", models.RoleAdmin)
	sess, _ := auth.SignIn(context.Background(), "a@asistitravel.com", "Asistencia2024!", "", "")

	rec := &eventRecorder{}
	unsubscribe := auth.OnAuthStateChange(rec.record)
	assert.Equal(t, 1, auth.ListenerCount())

	assert.NoError(t, auth.SignOut(context.Background(), sess.Token))
	identity, _ := auth.GetCurrentIdentity(context.Background(), sess.Token)
	assert.Nil(t, identity)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, auth.ListenerCount())

	auth.publish(session.Event{Type: session.EventSignedOut, Token: "x"})
	assert.Equal(t, []session.EventType{session.EventSignedOut}, rec.types())
}

func TestProvisionUser(t *testing.T) {
	database := setupTestDB(t)
	auth := NewAuthClient(database, testConfig())

	user, err := auth.ProvisionUser(context.Background(), "admin@asistitravel.com", "Asistencia2024!", models.RoleAdmin)
	assert.NoError(t, err)
	assert.True(t, user.IsConfirmed())

	profile, _ := auth.GetProfile(context.Background(), user.ID)
	assert.Equal(t, models.RoleAdmin, profile.Role)

	_, err = auth.ProvisionUser(context.Background(), "admin@asistitravel.com", "Asistencia2024!", models.RoleAdmin)
	assert.True(t, errors.Is(err, ErrAlreadyRegistered))
}

func TestCleanup(t *testing.T) {
	database := setupTestDB(t)
	auth := NewAuthClient(database, testConfig())
	user := createConfirmedUser(t, database, "a@asistitravel.com", "Asistencia2024!", models.RoleAdmin)

	database.Create(&models.Session{ID: "s1", UserID: user.ID, Token: "expired", ExpiresAt: time.Now().Add(-time.Hour)})
	database.Create(&models.Session{ID: "s2", UserID: user.ID, Token: "live", ExpiresAt: time.Now().Add(time.Hour)})

	rec := &eventRecorder{}
	unsubscribe := auth.OnAuthStateChange(rec.record)
	defer unsubscribe()

	n, err := auth.CleanupExpiredSessions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []session.EventType{session.EventSignedOut}, rec.types())

	stale := models.User{Email: "stale@asistitravel.com", Password: "x"}
	database.Create(&stale)
	database.Model(&stale).Update("created_at", time.Now().Add(-8*24*time.Hour))
	database.Create(&models.User{Email: "fresh@asistitravel.com", Password: "x"})

	removed, err := auth.CleanupUnconfirmedUsers(context.Background(), 7*24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
