package health

import (
	"context"
	"sort"
	"time"
)

// NewChecker creates a checker with no checks
func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
		now:    time.Now,
	}
}

// Register adds or replaces a check
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Names returns the registered check names, sorted
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run performs every check. The report status is the worst check status;
// a checker with no checks is healthy.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Timestamp: c.now(),
		Checks:    make(map[string]Check, len(c.checks)),
	}

	for name, checkFunc := range c.checks {
		start := c.now()
		check := checkFunc(ctx)
		check.Duration = c.now().Sub(start)
		check.LastChecked = start
		if check.Name == "" {
			check.Name = name
		}

		report.Checks[name] = check
		if check.Status.severity() > report.Status.severity() {
			report.Status = check.Status
		}
	}

	return report
}
