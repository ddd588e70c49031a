package main

import (
	"testing"

	"warungpos/backend/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		LocalStore:  "sqlite",
		LocalDBPath: "warungpos.db",
		ReportAt:    "23:55",
		Timezone:    "UTC",
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	loc, err := validateConfig(validConfig())
	if err != nil {
		t.Fatalf("expected config to pass, got %v", err)
	}
	if loc.String() != "UTC" {
		t.Fatalf("expected UTC location, got %s", loc)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"unknown store":   func(c *config.Config) { c.LocalStore = "bolt" },
		"missing db path": func(c *config.Config) { c.LocalDBPath = " " },
		"bad report time": func(c *config.Config) { c.ReportAt = "midnight" },
		"bad timezone":    func(c *config.Config) { c.Timezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			if _, err := validateConfig(cfg); err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
		})
	}
}
