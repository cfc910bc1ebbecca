package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type MockAccountCleaner struct {
	mock.Mock
}

func (m *MockAccountCleaner) CleanupExpiredSessions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountCleaner) CleanupUnconfirmedUsers(ctx context.Context, maxAge time.Duration) (int64, error) {
	args := m.Called(ctx, maxAge)
	return args.Get(0).(int64), args.Error(1)
}

type countingPruner struct{ calls int }

func (p *countingPruner) Prune() int {
	p.calls++
	return 3
}

func TestRunCleanup(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountCleaner)
	accounts.On("CleanupExpiredSessions", ctx).Return(2, nil)
	accounts.On("CleanupUnconfirmedUsers", ctx, UnconfirmedAccountMaxAge).Return(int64(1), nil)
	pruner := &countingPruner{}

	report := RunCleanup(ctx, accounts, pruner)

	assert.Equal(t, 2, report.ExpiredSessions)
	assert.Equal(t, int64(1), report.UnconfirmedUsers)
	assert.Equal(t, 3, report.PrunedStores)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, pruner.calls)
	accounts.AssertExpectations(t)
}

func TestRunCleanupContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountCleaner)
	accounts.On("CleanupExpiredSessions", ctx).Return(0, errors.New("db down"))
	accounts.On("CleanupUnconfirmedUsers", ctx, UnconfirmedAccountMaxAge).Return(int64(4), nil)

	report := RunCleanup(ctx, accounts, nil)

	assert.Len(t, report.Errors, 1)
	assert.Equal(t, int64(4), report.UnconfirmedUsers)
	assert.Zero(t, report.PrunedStores)
	accounts.AssertExpectations(t)
}

func setupJobsTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open("file:mem_"+uuid.New().String()+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	sqlDB, err := testDB.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	assert.NoError(t, testDB.AutoMigrate(models.All()...))
	return testDB
}

func TestRunCleanupAgainstRepository(t *testing.T) {
	db := setupJobsTestDB(t)
	auth := services.NewAuthClient(db, &config.Config{EmailTestMode: true, SessionSecret: "test-secret"})
	manager := session.NewManager(auth)
	defer manager.Close()

	now := time.Now()
	confirmed := models.User{Email: "ok@asistitravel.com", Password: "x", ConfirmedAt: &now}
	stale := models.User{Email: "stale@asistitravel.com", Password: "x", CreatedAt: now.Add(-8 * 24 * time.Hour)}
	fresh := models.User{Email: "fresh@asistitravel.com", Password: "x"}
	for _, u := range []*models.User{&confirmed, &stale, &fresh} {
		assert.NoError(t, db.Create(u).Error)
	}

	assert.NoError(t, db.Create(&models.Session{
		ID: uuid.New().String(), UserID: confirmed.ID, Token: "expired-token", ExpiresAt: now.Add(-time.Hour),
	}).Error)
	assert.NoError(t, db.Create(&models.Session{
		ID: uuid.New().String(), UserID: confirmed.ID, Token: "live-token", ExpiresAt: now.Add(time.Hour),
	}).Error)

	report := RunCleanup(context.Background(), auth, manager)

	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.ExpiredSessions)
	assert.Equal(t, int64(1), report.UnconfirmedUsers)

	var sessions int64
	db.Model(&models.Session{}).Count(&sessions)
	assert.Equal(t, int64(1), sessions)

	var emails []string
	db.Model(&models.User{}).Order("email").Pluck("email", &emails)
	assert.Equal(t, []string{"fresh@asistitravel.com", "ok@asistitravel.com"}, emails)
}

func TestStartScheduler(t *testing.T) {
	accounts := new(MockAccountCleaner)
	c := StartScheduler(accounts, &countingPruner{})
	defer c.Stop()

	assert.Len(t, c.Entries(), 2)
}
