package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword verifies a password against a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

func dummyPasswordHash() string {
	dummyHashOnce.Do(func() {
		hash, err := HashPassword(uuid.New().String())
		if err != nil {
			log.Printf("[WARNING] Failed to build dummy password hash: %v", err)
		}
		dummyHash = hash
	})
	return dummyHash
}

// NormalizeEmail trims and lower-cases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthClient is the authentication side of the repository: identities,
// sessions, role profiles and the change notifications session stores follow.
type AuthClient struct {
	db  *gorm.DB
	cfg *config.Config

	// SessionDuration is the lifetime of a new session
	SessionDuration time.Duration
	// Mailer delivers confirmation emails; SendEmail when nil
	Mailer Mailer

	mu        sync.RWMutex
	listeners map[int]func(session.Event)
	nextID    int
}

// NewAuthClient creates an auth client over database
func NewAuthClient(database *gorm.DB, cfg *config.Config) *AuthClient {
	return &AuthClient{
		db:              database,
		cfg:             cfg,
		SessionDuration: DefaultSessionDuration,
		listeners:       make(map[int]func(session.Event)),
	}
}

// OnAuthStateChange registers fn for every auth event and returns the
// function that removes it.
func (a *AuthClient) OnAuthStateChange(fn func(session.Event)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

// ListenerCount returns the number of active subscriptions
func (a *AuthClient) ListenerCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.listeners)
}

func (a *AuthClient) publish(ev session.Event) {
	a.mu.RLock()
	listeners := make([]func(session.Event), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// SignIn verifies credentials and opens a session
func (a *AuthClient) SignIn(ctx context.Context, email, password, ipAddress, userAgent string) (*models.Session, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown emails still pay for one bcrypt comparison
			CheckPassword(password, dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsConfirmed() {
		return nil, ErrEmailNotConfirmed
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(a.SessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := a.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	now := time.Now()
	if err := a.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		log.Printf("[WARNING] Failed to update last login for user %s: %v", user.ID, err)
	}

	a.publish(session.Event{Type: session.EventSignedIn, Token: token, Identity: user.Identity()})
	return sess, nil
}

// SignUp registers an unconfirmed identity and sends the confirmation link.
// The returned user is pending confirmation.
func (a *AuthClient) SignUp(ctx context.Context, email, password, lang string) (*models.User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyRegistered
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Password: hash}
	if err := a.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := a.sendConfirmation(user, lang); err != nil {
		log.Printf("[AUTH] Failed to send confirmation to %s: %v", user.Email, err)
	}
	return user, nil
}

func (a *AuthClient) sendConfirmation(user *models.User, lang string) error {
	token, err := IssueConfirmationToken(a.cfg.SessionSecret, user.ID, user.Email, time.Now())
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/auth/confirm?token=%s", a.cfg.AppURL, url.QueryEscape(token))

	email, err := BuildConfirmationEmail(user.Email, link, lang)
	if err != nil {
		return err
	}
	SendEmailAsync(a.cfg, email, a.Mailer)
	return nil
}

// ConfirmEmail marks the identity behind a confirmation token as confirmed.
// Confirming twice is not an error.
func (a *AuthClient) ConfirmEmail(ctx context.Context, token string) (*models.User, error) {
	claims, err := ParseConfirmationToken(a.cfg.SessionSecret, token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := a.db.WithContext(ctx).First(&user, "id = ?", claims.Subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidConfirmationToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Email != claims.Email {
		return nil, ErrInvalidConfirmationToken
	}

	if !user.IsConfirmed() {
		now := time.Now()
		if err := a.db.WithContext(ctx).Model(&user).Update("confirmed_at", now).Error; err != nil {
			return nil, fmt.Errorf("failed to confirm user: %w", err)
		}
		user.ConfirmedAt = &now
	}
	return &user, nil
}

// SignOut deletes the session behind token
func (a *AuthClient) SignOut(ctx context.Context, token string) error {
	result := a.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	a.publish(session.Event{Type: session.EventSignedOut, Token: token})
	return nil
}

// GetCurrentIdentity returns the identity behind token, or nil when the token
// is unknown or expired. Sessions past half their lifetime are extended and
// announced as refreshed.
func (a *AuthClient) GetCurrentIdentity(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, nil
	}

	var sess models.Session
	err := a.db.WithContext(ctx).Preload("User").Where("token = ?", token).First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if sess.IsExpired() {
		a.db.WithContext(ctx).Delete(&sess)
		return nil, nil
	}

	if sess.User.ID == "" {
		return nil, nil
	}

	identity := sess.User.Identity()
	if sess.NeedsRefresh(a.SessionDuration) {
		expires := time.Now().Add(a.SessionDuration)
		if err := a.db.WithContext(ctx).Model(&sess).Update("expires_at", expires).Error; err != nil {
			log.Printf("[WARNING] Failed to refresh session for user %s: %v", identity.ID, err)
		} else {
			a.publish(session.Event{Type: session.EventTokenRefreshed, Token: token, Identity: identity})
		}
	}
	return identity, nil
}

// GetProfile returns the role profile for userID, or nil when none exists
func (a *AuthClient) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := a.db.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.ID == "" {
		return nil, nil
	}
	return &profile, nil
}

// ListUsers returns every identity with its profile, ordered by email
func (a *AuthClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := a.db.WithContext(ctx).Preload("Profile").Order("email ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetProfileRole assigns role to userID, creating the profile if absent, and
// notifies live sessions of that identity.
func (a *AuthClient) SetProfileRole(ctx context.Context, userID string, role models.Role) (*models.UserProfile, error) {
	if !models.IsValidRole(string(role)) {
		return nil, ErrInvalidRole
	}

	var user models.User
	if err := a.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	profile := models.UserProfile{ID: user.ID, Email: user.Email, Role: role}
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"role": role, "email": user.Email, "updated_at": time.Now()}),
	}).Create(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	a.publish(session.Event{Type: session.EventUserUpdated, Identity: user.Identity()})

	return a.GetProfile(ctx, user.ID)
}

// ProvisionUser creates a confirmed identity with a role profile. Used for
// out-of-band provisioning.
func (a *AuthClient) ProvisionUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	if !models.IsValidRole(string(role)) {
		return nil, ErrInvalidRole
	}
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{Email: email, Password: hash, ConfirmedAt: &now}

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyRegistered
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserProfile{ID: user.ID, Email: email, Role: role}).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return user, nil
}

// CleanupExpiredSessions deletes expired sessions and announces each sign-out
func (a *AuthClient) CleanupExpiredSessions(ctx context.Context) (int, error) {
	var expired []models.Session
	if err := a.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("failed to find expired sessions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, len(expired))
	for i, s := range expired {
		ids[i] = s.ID
	}
	if err := a.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Session{}).Error; err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}

	for _, s := range expired {
		a.publish(session.Event{Type: session.EventSignedOut, Token: s.Token})
	}
	return len(expired), nil
}

// CleanupUnconfirmedUsers deletes identities never confirmed within maxAge
func (a *AuthClient) CleanupUnconfirmedUsers(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	result := a.db.WithContext(ctx).
		Where("confirmed_at IS NULL AND created_at < ?", cutoff).
		Delete(&models.User{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup unconfirmed users: %w", result.Error)
	}
	return result.RowsAffected, nil
}
