package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestBaseConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := BaseConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging defaults to be applied, got level %q", cfg.Logging.Level)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := BaseConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestBaseConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BaseConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", BaseConfig{Name: "svc", Environment: "development"}, false, ""},
		{"valid production", BaseConfig{Name: "svc", Environment: "production"}, false, ""},
		{"missing name", BaseConfig{Environment: "production"}, true, "name: is required"},
		{"invalid environment", BaseConfig{Name: "svc", Environment: "invalid"}, true, "environment: must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBaseConfigValidateLogging(t *testing.T) {
	cfg := BaseConfig{Name: "svc", Environment: "staging"}
	cfg.Logging.ApplyDefaults()
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "logging:") {
		t.Errorf("expected logging error, got %v", err)
	}
}

type testConfig struct {
	BaseConfig `yaml:",inline" mapstructure:",squash"`
	Container  struct {
		EagerSingletons bool     `mapstructure:"eager_singletons"`
		ContextScopes   []string `mapstructure:"context_scopes"`
	} `mapstructure:"container"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: hello
environment: staging
container:
  eager_singletons: true
  context_scopes: [session]
`)

	var cfg testConfig
	if err := LoadConfig("hello", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "hello" {
		t.Errorf("expected name 'hello', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if !cfg.Container.EagerSingletons {
		t.Error("expected eager_singletons=true")
	}
	if !slices.Equal(cfg.Container.ContextScopes, []string{"session"}) {
		t.Errorf("expected context_scopes [session], got %v", cfg.Container.ContextScopes)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: hello
container:
  eager_singletons: true
`)
	t.Setenv("CONTAINER_EAGER_SINGLETONS", "false")

	var cfg testConfig
	if err := LoadConfig("hello", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Container.EagerSingletons {
		t.Error("expected env var to override eager_singletons")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()

	var cfg testConfig
	ok := writeFile(t, dir, "ok.yml", "name: hello\n")
	if err := Load("hello", &cfg, WithConfigFile(ok)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected defaulted environment, got %q", cfg.Environment)
	}

	var bad testConfig
	missing := writeFile(t, dir, "bad.yml", "environment: production\n")
	if err := Load("hello", &bad, WithConfigFile(missing)); err == nil {
		t.Error("expected validation error for missing name")
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestFileResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "cmd dir wins over root",
			files:      []string{"./cmd/hello/config.yml", "./config.yml"},
			wantConfig: "./cmd/hello/config.yml",
		},
		{
			name:       "yaml extension",
			files:      []string{"./config/config.yaml"},
			wantConfig: "./config/config.yaml",
		},
		{
			name:    "service env file wins over plain",
			files:   []string{"./.env", "../cmd/hello/.env.hello"},
			wantEnv: "../cmd/hello/.env.hello",
		},
		{
			name: "nothing found",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			got := (&FileResolver{FileSystem: fs}).ResolveFiles("hello", LoaderConfig{})
			if got.ConfigFile != tc.wantConfig {
				t.Errorf("config file = %q, want %q", got.ConfigFile, tc.wantConfig)
			}
			if got.EnvFile != tc.wantEnv {
				t.Errorf("env file = %q, want %q", got.EnvFile, tc.wantEnv)
			}
		})
	}
}

func TestFileResolverExplicitPaths(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./config.yml": true}}
	got := (&FileResolver{FileSystem: fs}).ResolveFiles("hello", LoaderConfig{
		ConfigFile: "/etc/hello.yml",
		EnvFile:    "/etc/hello.env",
	})
	if got.ConfigFile != "/etc/hello.yml" || got.EnvFile != "/etc/hello.env" {
		t.Errorf("expected explicit paths to be kept, got %+v", got)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("CONTAINER_EAGER_SINGLETONS")
	for _, want := range []string{
		"container_eager_singletons",
		"container.eager.singletons",
		"container.eager_singletons",
		"container_eager.singletons",
	} {
		if !slices.Contains(got, want) {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}

	if got := envKeyVariants("PORT"); !slices.Equal(got, []string{"port"}) {
		t.Errorf("expected [port], got %v", got)
	}
	if got := envKeyVariants("_"); got != nil {
		t.Errorf("expected no variants for malformed key, got %v", got)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)

	if lc.FileSystem != fs {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}
