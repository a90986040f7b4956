// Package health manages component health checks and serves the liveness and
// readiness endpoints.
package health

import (
	"context"
	"os"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check result for a specific component
type Check struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"duration_ms"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// Checker manages health checks for the application
type Checker struct {
	mu          sync.RWMutex
	checks      map[string]CheckFunc
	readyChecks map[string]CheckFunc
	startTime   time.Time
}

// Response represents the overall health response
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Uptime    float64          `json:"uptime_seconds"`
}

// NewChecker creates an empty health checker.
func NewChecker() *Checker {
	return &Checker{
		checks:      make(map[string]CheckFunc),
		readyChecks: make(map[string]CheckFunc),
		startTime:   time.Now(),
	}
}

// Register adds a health check included in the overall health report.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// RegisterReadiness adds a check that also gates readiness.
func (c *Checker) RegisterReadiness(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
	c.readyChecks[name] = fn
}

func (c *Checker) snapshot(ready bool) map[string]CheckFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	source := c.checks
	if ready {
		source = c.readyChecks
	}
	fns := make(map[string]CheckFunc, len(source))
	for name, fn := range source {
		fns[name] = fn
	}
	return fns
}

func (c *Checker) run(ready bool) Response {
	results := make(map[string]Check)
	overall := StatusHealthy

	for name, fn := range c.snapshot(ready) {
		check := fn()
		check.Name = name
		results[name] = check

		switch check.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}

	return Response{
		Status:    overall,
		Timestamp: time.Now(),
		Checks:    results,
		Uptime:    time.Since(c.startTime).Seconds(),
	}
}

// RunChecks runs every registered check and aggregates the worst status.
func (c *Checker) RunChecks() Response {
	return c.run(false)
}

// RunReadinessChecks runs only the readiness-gating checks.
func (c *Checker) RunReadinessChecks() Response {
	return c.run(true)
}

// Pinger is anything with connectivity that can be probed, such as the
// results store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DirWritableCheck verifies a cache directory exists and is writable.
func DirWritableCheck(dir string) CheckFunc {
	return func() Check {
		start := time.Now()
		check := Check{Status: StatusHealthy, LastChecked: start}

		f, err := os.CreateTemp(dir, ".healthcheck-*")
		if err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			f.Close()
			os.Remove(f.Name())
		}

		check.Duration = time.Since(start)
		return check
	}
}

// PingCheck probes a Pinger with a short timeout.
func PingCheck(p Pinger) CheckFunc {
	return func() Check {
		start := time.Now()
		check := Check{Status: StatusHealthy, LastChecked: start}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		}

		check.Duration = time.Since(start)
		return check
	}
}
