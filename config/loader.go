package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts the file operations the loader performs so tests can
// run against a fake tree.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
}

// RealFileSystem is the FileSystem backed by the OS.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// LoaderConfig holds the loader's dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file path, skips the search
	EnvFile    string // explicit .env file path, skips the search
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

// Resolver locates config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles holds the paths the resolver settled on. Either may be
// empty when nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when the options carry them,
// otherwise searches the standard locations.
func (cr *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.firstExisting(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.firstExisting(envCandidates(serviceName))
	}
	return resolved
}

func (cr *Resolver) firstExisting(paths []string) string {
	for _, path := range paths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// shortServiceName strips a dash-separated prefix, so "speechkit-sttd"
// also matches cmd/sttd.
func shortServiceName(serviceName string) string {
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 {
		return serviceName[idx+1:]
	}
	return serviceName
}

// serviceNames returns the service name plus its short form when distinct.
func serviceNames(serviceName string) []string {
	if short := shortServiceName(serviceName); short != serviceName {
		return []string{serviceName, short}
	}
	return []string{serviceName}
}

// upward prefixes rel with each ancestor the binary might run from: the
// repo root, cmd/, and cmd/<name>/.
func upward(rel string) []string {
	return []string{"./" + rel, "../" + rel, "../../" + rel}
}

// configCandidates lists the config.yml locations in probe order. Per-binary
// files under cmd/ win over a repo-level config directory.
func configCandidates(serviceName string) []string {
	var paths []string
	for _, depth := range []string{".", "..", "../.."} {
		for _, name := range serviceNames(serviceName) {
			paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", depth, name))
		}
	}
	paths = append(paths, "./config/config.yml", "../config/config.yml", "./config.yml")
	return paths
}

// envCandidates lists .env locations: the service-suffixed file first, then
// the plain one, each probed near the binary before the repo root.
func envCandidates(serviceName string) []string {
	var dirs []string
	for _, name := range serviceNames(serviceName) {
		dirs = append(dirs, upward("cmd/"+name)...)
		dirs = append(dirs, upward("config/"+name)...)
	}
	dirs = append(dirs, upward("config")...)
	dirs = append(dirs, ".", "..", "../..")

	var paths []string
	for _, envFile := range []string{".env." + serviceName, ".env"} {
		for _, dir := range dirs {
			paths = append(paths, dir+"/"+envFile)
		}
	}
	return paths
}

// LoadConfig populates cfg for the named service. Precedence is YAML file,
// then process environment, then .env file entries, each layer able to
// override nested keys via generated variants (SPEECH_WHISPER_MODEL maps
// to speech.whisper.model among others).
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()

	// YAML file is the base layer.
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load config file %s: %v\n", files.ConfigFile, err)
		}
	}

	// Environment variables override the file.
	v.AutomaticEnv()
	autoBindEnvVars(v)

	// .env entries become environment variables, so re-bind after loading.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load .env file %s: %v\n", files.EnvFile, err)
		} else {
			autoBindEnvVars(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// autoBindEnvVars maps every UPPER_SNAKE environment variable onto the
// nested viper keys it could stand for.
func autoBindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// generateEnvKeyVariants expands an environment key into the nested key
// spellings a config struct might use:
//
//	SPEECH_WHISPER_MODEL -> speech_whisper_model, speech.whisper.model,
//	                        speech.whisper_model, ...
//
// The split point between nesting and a multi-word leaf is ambiguous, so
// every progressive split is emitted.
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	if len(parts) >= 3 {
		variants = append(variants, strings.Join(parts[:len(parts)-1], ".")+"."+parts[len(parts)-1])
	}

	return dedupe(variants)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	kept := items[:0]
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			kept = append(kept, item)
		}
	}
	return kept
}
