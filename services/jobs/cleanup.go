package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// UnconfirmedAccountMaxAge is how long a sign-up may stay unconfirmed
const UnconfirmedAccountMaxAge = 7 * 24 * time.Hour

// AccountCleaner removes stale authentication records
type AccountCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int, error)
	CleanupUnconfirmedUsers(ctx context.Context, maxAge time.Duration) (int64, error)
}

// StorePruner drops idle in-memory session stores
type StorePruner interface {
	Prune() int
}

// CleanupReport summarizes one cleanup run
type CleanupReport struct {
	ExpiredSessions  int
	UnconfirmedUsers int64
	PrunedStores     int
	Errors           []error
}

// RunCleanup deletes expired sessions and old unconfirmed accounts, then
// prunes session stores. A failing step does not stop the others.
func RunCleanup(ctx context.Context, accounts AccountCleaner, stores StorePruner) CleanupReport {
	var report CleanupReport

	n, err := accounts.CleanupExpiredSessions(ctx)
	if err != nil {
		log.Printf("[CRON] Expired session cleanup failed: %v", err)
		report.Errors = append(report.Errors, err)
	}
	report.ExpiredSessions = n

	removed, err := accounts.CleanupUnconfirmedUsers(ctx, UnconfirmedAccountMaxAge)
	if err != nil {
		log.Printf("[CRON] Unconfirmed account cleanup failed: %v", err)
		report.Errors = append(report.Errors, err)
	}
	report.UnconfirmedUsers = removed

	if stores != nil {
		report.PrunedStores = stores.Prune()
	}

	log.Printf("[CRON] Cleanup finished: %d expired sessions, %d unconfirmed accounts, %d session stores",
		report.ExpiredSessions, report.UnconfirmedUsers, report.PrunedStores)
	return report
}

// StartScheduler runs the full cleanup nightly and prunes session stores
// every ten minutes. The caller stops the returned scheduler on shutdown.
func StartScheduler(accounts AccountCleaner, stores StorePruner) *cron.Cron {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		log.Printf("[CRON] Timezone unavailable, using UTC: %v", err)
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		RunCleanup(ctx, accounts, stores)
	}); err != nil {
		log.Fatalf("[CRON] Failed to schedule cleanup: %v", err)
	}

	if stores != nil {
		if _, err := c.AddFunc("@every 10m", func() { stores.Prune() }); err != nil {
			log.Fatalf("[CRON] Failed to schedule session pruning: %v", err)
		}
	}

	c.Start()
	log.Println("[CRON] Scheduler started")
	return c
}
