package services

import (
	"log"
	"sync"
	"time"
)

// SignInMonitor counts failed sign-ins per IP and raises one alert per hour
// when an IP crosses the threshold inside the window.
type SignInMonitor struct {
	Threshold int
	Window    time.Duration

	mu         sync.Mutex
	failures   map[string][]time.Time
	alertedIPs map[string]time.Time
	alerts     []SecurityAlert
}

// SecurityAlert is one raised alert
type SecurityAlert struct {
	Timestamp time.Time
	IP        string
	Email     string
	Attempts  int
}

// Monitor is the process-wide sign-in monitor
var Monitor = NewSignInMonitor(5, 10*time.Minute)

// NewSignInMonitor creates a monitor alerting after threshold failures in window
func NewSignInMonitor(threshold int, window time.Duration) *SignInMonitor {
	return &SignInMonitor{
		Threshold:  threshold,
		Window:     window,
		failures:   make(map[string][]time.Time),
		alertedIPs: make(map[string]time.Time),
	}
}

// TrackFailure records a failed sign-in for email from ip. It reports
// whether this failure raised an alert.
func (m *SignInMonitor) TrackFailure(ip, email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-m.Window)
	recent := m.failures[ip][:0]
	for _, t := range m.failures[ip] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.failures[ip] = recent

	if len(recent) < m.Threshold {
		return false
	}
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < time.Hour {
		return false
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Email: email, Attempts: len(recent)}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > 100 {
		m.alerts = m.alerts[:100]
	}
	log.Printf("[SECURITY ALERT] %d failed sign-ins from IP %s (last email: %s)", len(recent), ip, email)
	return true
}

// Reset forgets the failures of ip after a successful sign-in
func (m *SignInMonitor) Reset(ip string) {
	m.mu.Lock()
	delete(m.failures, ip)
	m.mu.Unlock()
}

// RecentAlerts returns a copy of the raised alerts, newest first
func (m *SignInMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alerts := make([]SecurityAlert, len(m.alerts))
	copy(alerts, m.alerts)
	return alerts
}

// Prune drops failure lists and alert marks that can no longer matter
func (m *SignInMonitor) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for ip, attempts := range m.failures {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > m.Window {
			delete(m.failures, ip)
			removed++
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) > time.Hour {
			delete(m.alertedIPs, ip)
		}
	}
	return removed
}
