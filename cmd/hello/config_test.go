package main

import (
	"testing"
	"time"

	"github.com/kbukum/beankit/config"
)

func TestLoadBundledConfig(t *testing.T) {
	cfg := newAppConfig()
	if err := config.Load(serviceName, cfg, config.WithConfigFile("config.yml"), config.WithEnvFile("missing.env")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "hello" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected config: %+v", cfg.BaseConfig)
	}
	if !cfg.Container.EagerSingletons || !cfg.Container.ValidateOnStart {
		t.Errorf("unexpected container config: %+v", cfg.Container)
	}
	if cfg.Observability.MetricInterval != 15*time.Second {
		t.Errorf("expected 15s metric interval, got %v", cfg.Observability.MetricInterval)
	}
	if cfg.Hello.Discount.Main != "rate" {
		t.Errorf("expected the rate policy, got %q", cfg.Hello.Discount.Main)
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"bad port", func(c *AppConfig) { c.Server.Port = 99999 }},
		{"builtin scope", func(c *AppConfig) { c.Container.ContextScopes = []string{"singleton"} }},
		{"bad sample rate", func(c *AppConfig) { c.Observability.SampleRate = 3 }},
		{"unknown policy", func(c *AppConfig) { c.Hello.Discount.Main = "half" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newAppConfig()
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err != nil {
				t.Fatalf("expected defaults to validate, got %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
