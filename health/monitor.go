package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
)

// Check reports the current health of one component.
type Check func() Status

// Monitor runs registered checks on demand.
type Monitor struct {
	name string

	mu     sync.RWMutex
	checks map[string]Check
}

// NewMonitor creates a monitor reporting as name.
func NewMonitor(name string) *Monitor {
	return &Monitor{
		name:   name,
		checks: make(map[string]Check),
	}
}

// Register adds or replaces the check for component.
func (m *Monitor) Register(component string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[component] = check
}

// Remove drops the check for component.
func (m *Monitor) Remove(component string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checks, component)
}

// Report runs every check and aggregates the results, sorted by component.
func (m *Monitor) Report() Status {
	m.mu.RLock()
	names := make([]string, 0, len(m.checks))
	checks := make(map[string]Check, len(m.checks))
	for name, c := range m.checks {
		names = append(names, name)
		checks[name] = c
	}
	m.mu.RUnlock()

	sort.Strings(names)
	sub := make([]Status, 0, len(names))
	for _, name := range names {
		s := checks[name]()
		s.Component = name
		sub = append(sub, s)
	}
	return Aggregate(m.name, sub)
}

// Healthy reports whether no check is unhealthy. Degraded counts as healthy
// so a reconnecting process is not restarted.
func (m *Monitor) Healthy() bool {
	return m.Report().State != StateUnhealthy
}

// ServeHTTP writes the report as JSON, with 503 when unhealthy.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	report := m.Report()

	w.Header().Set("Content-Type", "application/json")
	if report.State == StateUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(report)
}
