// Package health runs named readiness checks: configuration, catalog,
// history database and the remote host.
package health

import (
	"context"
	"time"
)

// Status represents health status
type Status int

const (
	// StatusHealthy indicates every check passed
	StatusHealthy Status = iota
	// StatusDegraded indicates an optional check failed
	StatusDegraded
	// StatusUnhealthy indicates a critical check failed
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Check is a single named probe
type Check struct {
	Name     string
	Run      func(ctx context.Context) (detail string, err error)
	Critical bool // failure makes the report unhealthy
	Timeout  time.Duration
}

// Result is the outcome of one check
type Result struct {
	Name     string
	Detail   string
	Err      error
	Critical bool
	Elapsed  time.Duration
}

// OK reports whether the check passed
func (r Result) OK() bool {
	return r.Err == nil
}

// Report is the outcome of all checks in registration order
type Report struct {
	Status  Status
	Results []Result
}

// Checker runs registered checks in order
type Checker struct {
	checks []Check
}

// NewChecker creates an empty checker
func NewChecker() *Checker {
	return &Checker{}
}

// Register adds a check; a zero timeout becomes 10s
func (c *Checker) Register(check Check) {
	if check.Timeout == 0 {
		check.Timeout = 10 * time.Second
	}
	c.checks = append(c.checks, check)
}

// Run executes every check, even after a failure, so the report is complete
func (c *Checker) Run(ctx context.Context) Report {
	report := Report{Status: StatusHealthy}
	for _, check := range c.checks {
		res := run(ctx, check)
		report.Results = append(report.Results, res)
		if res.OK() {
			continue
		}
		if check.Critical {
			report.Status = StatusUnhealthy
		} else if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	return report
}

func run(ctx context.Context, check Check) Result {
	ctx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	start := time.Now()
	detail, err := check.Run(ctx)
	return Result{
		Name:     check.Name,
		Detail:   detail,
		Err:      err,
		Critical: check.Critical,
		Elapsed:  time.Since(start),
	}
}
