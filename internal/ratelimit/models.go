// Package ratelimit throttles principals with two fixed-window quotas: a
// short burst window and a long sustained window. Windows reset at a hard
// boundary rather than decaying; a window whose elapsed time reaches its
// duration starts over with a fresh start timestamp and a zero count.
package ratelimit

import (
	"time"

	"medgate/internal/platform/config"
)

// WindowKind names one of the two quota windows.
type WindowKind string

const (
	WindowShort WindowKind = "short"
	WindowLong  WindowKind = "long"
)

// Window is one quota window's parameters.
type Window struct {
	Kind     WindowKind
	Duration time.Duration
	Limit    int
}

// Windows holds both quota windows. Short guards bursts, long guards
// sustained volume; a request must fit in both.
type Windows struct {
	Short Window
	Long  Window
}

// DefaultWindows returns the contract budgets: 10 requests per 5 minutes and
// 30 requests per 60 minutes.
func DefaultWindows() Windows {
	return Windows{
		Short: Window{Kind: WindowShort, Duration: 5 * time.Minute, Limit: 10},
		Long:  Window{Kind: WindowLong, Duration: 60 * time.Minute, Limit: 30},
	}
}

// WindowsFromConfig builds Windows from deployment configuration.
func WindowsFromConfig(cfg config.RateLimit) Windows {
	return Windows{
		Short: Window{Kind: WindowShort, Duration: cfg.ShortWindow, Limit: cfg.ShortLimit},
		Long:  Window{Kind: WindowLong, Duration: cfg.LongWindow, Limit: cfg.LongLimit},
	}
}

// Counter is the persisted state of one (principal, window) pair. Count never
// exceeds the window's limit.
type Counter struct {
	WindowStart time.Time
	Count       int
}

// expired reports whether the counter's window has fully elapsed at now. The
// boundary is closed on the reset side: a request arriving exactly at
// WindowStart+Duration sees a fresh window.
func (c Counter) expired(now time.Time, d time.Duration) bool {
	return now.Sub(c.WindowStart) >= d
}

// Result is the outcome of one acquisition attempt.
type Result struct {
	Allowed bool
	// Window names the tripped window when throttled.
	Window WindowKind
	// Remaining is the smaller residual budget across both windows after a
	// successful acquisition; zero when throttled.
	Remaining int
	// RetryAfter hints how long until the tripped window resets.
	RetryAfter time.Duration
	// ResetAt is when the binding window resets.
	ResetAt time.Time
}
