// Package health runs the pre-run availability checks of the catalog and the search backend.
package health

import (
	"context"
	"errors"
	"fmt"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	errs   []error
}

// Err joins the failures of the report, nil when healthy.
func (r Report) Err() error {
	return errors.Join(r.errs...)
}

type namedPinger struct {
	name string
	p    Pinger
}

// Service coordinates health checks.
type Service struct {
	components []namedPinger
}

// New creates an empty Service.
func New() *Service {
	return &Service{}
}

// Add registers a component under name. Components are checked in registration order.
func (s *Service) Add(name string, p Pinger) *Service {
	s.components = append(s.components, namedPinger{name: name, p: p})
	return s
}

// Check pings every component.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.components))}

	failed := 0
	for _, c := range s.components {
		if err := c.p.Ping(ctx); err != nil {
			r.Checks[c.name] = CheckError
			r.errs = append(r.errs, fmt.Errorf("%s: %w", c.name, err))
			failed++
			continue
		}
		r.Checks[c.name] = CheckOK
	}

	switch {
	case failed == 0:
	case failed == len(s.components):
		r.Status = Unhealthy
	default:
		r.Status = Degraded
	}
	return r
}
