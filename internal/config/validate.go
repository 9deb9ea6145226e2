package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Scheduler.DefaultLeadTimeMinutes < 0 {
		return fmt.Errorf("scheduler.default_lead_time_minutes must be >= 0 (got %d)", c.Scheduler.DefaultLeadTimeMinutes)
	}
	if c.Scheduler.MaxDeployAttempts < 1 {
		return fmt.Errorf("scheduler.max_deploy_attempts must be >= 1 (got %d)", c.Scheduler.MaxDeployAttempts)
	}
	if c.Scheduler.TickInterval <= 0 {
		return fmt.Errorf("scheduler.tick_interval must be > 0 (got %v)", c.Scheduler.TickInterval)
	}
	if c.Lifecycle.ReconcileConcurrency < 1 {
		return fmt.Errorf("lifecycle.reconcile_concurrency must be >= 1 (got %d)", c.Lifecycle.ReconcileConcurrency)
	}
	if c.Lifecycle.WatchdogTimeout <= 0 {
		return fmt.Errorf("lifecycle.watchdog_timeout must be > 0 (got %v)", c.Lifecycle.WatchdogTimeout)
	}
	if c.Lifecycle.IngestMaxAttempts < 1 {
		return fmt.Errorf("lifecycle.ingest_max_attempts must be >= 1 (got %d)", c.Lifecycle.IngestMaxAttempts)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("ai.max_tokens must be > 0 (got %d)", c.AI.MaxTokens)
	}
	return nil
}
