package dotenv

import (
	"os"
	"strings"
)

// EnvProvider is read-only access to a set of "real" environment variables.
// The resolver consults it before the parsed .env file.
type EnvProvider interface {
	// Getenv returns the value for name and whether it is set.
	Getenv(name string) (string, bool)

	// Environ returns every variable that has a value.
	Environ() map[string]string
}

// SystemEnvProvider reads the live environment of the current process.
// Nothing is cached: each call sees the environment as it is right now.
type SystemEnvProvider struct{}

func (SystemEnvProvider) Getenv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Environ splits os.Environ on the first '='. Entries without a separator or
// with an empty name (Windows drive-letter pseudo variables such as
// "=C:=C:\") are dropped.
func (SystemEnvProvider) Environ() map[string]string {
	environ := os.Environ()
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return vars
}

// MapEnvProvider is a fixed in-memory environment, mainly for tests.
type MapEnvProvider map[string]string

func (m MapEnvProvider) Getenv(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Environ returns a copy so callers cannot mutate the provider.
func (m MapEnvProvider) Environ() map[string]string {
	vars := make(map[string]string, len(m))
	for k, v := range m {
		vars[k] = v
	}
	return vars
}
