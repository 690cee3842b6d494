package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if err := c.Publication.validate(); err != nil {
		return fmt.Errorf("publication: %w", err)
	}

	if err := c.Sweeper.validate(); err != nil {
		return fmt.Errorf("sweeper: %w", err)
	}

	if err := c.Trigger.validate(); err != nil {
		return fmt.Errorf("trigger: %w", err)
	}

	return nil
}

func (d *DatabaseConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(d.Driver)) {
	case DriverPostgres:
		if d.DSN == "" {
			return fmt.Errorf("dsn is required for driver %q", DriverPostgres)
		}
		if d.MinConns > d.MaxConns {
			return fmt.Errorf("min_conns (%d) must not exceed max_conns (%d)", d.MinConns, d.MaxConns)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown driver %q (want %q or %q)", d.Driver, DriverPostgres, DriverMemory)
	}
	return nil
}

func (p *PublicationConfig) validate() error {
	if p.PublishDueTimeout <= 0 {
		return fmt.Errorf("publish_due_timeout must be > 0 (got %v)", p.PublishDueTimeout)
	}
	if p.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be > 0 (got %d)", p.HistoryLimit)
	}
	if p.DefaultListLimit <= 0 || p.DefaultListLimit > 200 {
		return fmt.Errorf("default_list_limit must be in 1..200 (got %d)", p.DefaultListLimit)
	}
	if p.AuthoringRateLimit <= 0 {
		return fmt.Errorf("authoring_rate_limit must be > 0 (got %d)", p.AuthoringRateLimit)
	}
	if p.AuthoringRateBurst <= 0 {
		return fmt.Errorf("authoring_rate_burst must be > 0 (got %d)", p.AuthoringRateBurst)
	}
	return nil
}

func (s *SweeperConfig) validate() error {
	if s.Disabled {
		return nil
	}
	if _, err := cron.ParseStandard(s.Schedule); err != nil {
		return fmt.Errorf("schedule %q: %w", s.Schedule, err)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", s.Timeout)
	}
	return nil
}

func (t *TriggerConfig) validate() error {
	if t.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be > 0 (got %v)", t.TickInterval)
	}
	if t.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be > 0 (got %v)", t.CallTimeout)
	}
	u, err := url.Parse(t.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute URL", t.BaseURL)
	}
	return nil
}
