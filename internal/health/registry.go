package health

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds a full run of the registered checks.
const DefaultTimeout = 5 * time.Second

// Registry manages health checkers and executes checks.
type Registry struct {
	checkers []Checker
	version  string
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewRegistry creates a new health check registry.
func NewRegistry(version string) *Registry {
	return &Registry{
		checkers: make([]Checker, 0),
		version:  version,
		timeout:  DefaultTimeout,
	}
}

// SetTimeout changes how long Run waits for the checks. Non-positive values are ignored.
func (r *Registry) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = d
}

// Register adds a health checker to the registry.
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// Checkers returns a copy of the registered checkers.
func (r *Registry) Checkers() []Checker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	checkers := make([]Checker, len(r.checkers))
	copy(checkers, r.checkers)
	return checkers
}

// Version returns the version string.
func (r *Registry) Version() string {
	return r.version
}

// Run executes every check concurrently and folds the results into a Report.
// A failing critical check makes the report unhealthy; any other failure degrades it.
func (r *Registry) Run(ctx context.Context) Report {
	r.mu.RLock()
	checkers := r.checkers
	timeout := r.timeout
	r.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	checks := make(map[string]CheckResult, len(checkers))
	overallStatus := StatusHealthy

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()

			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)

			mu.Lock()
			defer mu.Unlock()

			checks[c.Name()] = result

			if result.Status == StatusUnhealthy {
				if c.Severity() == SeverityCritical {
					overallStatus = StatusUnhealthy
				} else if overallStatus == StatusHealthy {
					overallStatus = StatusDegraded
				}
			} else if result.Status == StatusDegraded && overallStatus == StatusHealthy {
				overallStatus = StatusDegraded
			}
		}(checker)
	}

	wg.Wait()

	return Report{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Version:   r.version,
		Checks:    checks,
	}
}
