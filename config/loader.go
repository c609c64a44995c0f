package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/beankit/logger"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// FileResolver finds the config and env files for a service.
type FileResolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when given and searches for the rest.
func (r *FileResolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(searchDirs(serviceName), "config.yml", "config.yaml")
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(searchDirs(serviceName), ".env."+serviceName, ".env")
	}
	return resolved
}

// first returns the first existing file, trying every name in every dir.
func (r *FileResolver) first(dirs []string, names ...string) string {
	for _, name := range names {
		for _, dir := range dirs {
			path := dir + "/" + name
			if r.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// searchDirs lists candidate directories from most to least specific.
func searchDirs(serviceName string) []string {
	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		dirs = append(dirs, fmt.Sprintf("%s/cmd/%s", up, serviceName))
	}
	for _, up := range []string{".", ".."} {
		dirs = append(dirs, fmt.Sprintf("%s/config", up))
	}
	return append(dirs, ".")
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Defaulter is implemented by config structs with default values.
type Defaulter interface {
	ApplyDefaults()
}

// Validator is implemented by config structs that check themselves.
type Validator interface {
	Validate() error
}

// LoadConfig reads the service's config file, then its .env file, then the
// process environment, and unmarshals the merged result into cfg.
// A missing file is not an error; an unreadable one is.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	resolver := &FileResolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
		logger.Debug("config file loaded", logger.Fields("file", files.ConfigFile))
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load env file", logger.Fields("file", files.EnvFile, "error", err.Error()))
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// Load is LoadConfig followed by ApplyDefaults and Validate when cfg
// implements them.
func Load(serviceName string, cfg any, opts ...LoaderOption) error {
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return err
	}
	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
	}
	if val, ok := cfg.(Validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("invalid config for service %s: %w", serviceName, err)
		}
	}
	return nil
}

// bindEnv maps UPPER_SNAKE variables onto every nested key they could mean.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants splits an env key at each underscore in turn:
//
//	CONTAINER_EAGER_SINGLETONS -> container_eager_singletons,
//	    container.eager.singletons, container.eager_singletons,
//	    container_eager.singletons
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	for _, p := range parts {
		if p == "" {
			return nil
		}
	}
	if len(parts) == 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants,
			strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"),
			strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."),
		)
	}
	return dedupe(variants)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
