package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignInMonitor(t *testing.T) {
	m := NewSignInMonitor(5, 10*time.Minute)
	ip := "127.0.0.1"

	t.Run("Alerts at threshold", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			assert.False(t, m.TrackFailure(ip, "a@asistitravel.com"))
		}
		assert.True(t, m.TrackFailure(ip, "a@asistitravel.com"))

		alerts := m.RecentAlerts()
		if assert.Len(t, alerts, 1) {
			assert.Equal(t, ip, alerts[0].IP)
			assert.Equal(t, 5, alerts[0].Attempts)
		}
	})

	t.Run("One alert per hour per IP", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.False(t, m.TrackFailure(ip, "a@asistitravel.com"))
		}
		assert.Len(t, m.RecentAlerts(), 1)
	})

	t.Run("Other IPs are independent", func(t *testing.T) {
		assert.False(t, m.TrackFailure("10.0.0.1", "b@asistitravel.com"))
	})

	t.Run("Reset clears failures", func(t *testing.T) {
		m.Reset("10.0.0.1")
		assert.Zero(t, m.Prune())
	})
}

func TestSignInMonitorWindow(t *testing.T) {
	m := NewSignInMonitor(2, 20*time.Millisecond)

	assert.False(t, m.TrackFailure("1.1.1.1", ""))
	time.Sleep(40 * time.Millisecond)
	assert.False(t, m.TrackFailure("1.1.1.1", ""))

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, m.Prune())
}
