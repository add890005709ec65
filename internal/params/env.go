package params

import (
	"context"
	"os"
	"strings"
)

// EnvStore resolves parameters from process environment variables. The key
// /hla-compass/s3-bucket maps to SITEPUB_PARAM_HLA_COMPASS_S3_BUCKET.
type EnvStore struct{}

// NewEnvStore creates an environment-backed parameter store.
func NewEnvStore() *EnvStore { return &EnvStore{} }

// Get returns the environment value for key, or ErrNotFound when unset.
func (s *EnvStore) Get(_ context.Context, key string) (string, error) {
	v, ok := os.LookupEnv(EnvVar(key))
	if !ok || v == "" {
		return "", ErrNotFound{Key: key}
	}
	return v, nil
}

// EnvVar converts a parameter key to its environment variable name.
func EnvVar(key string) string {
	name := strings.TrimPrefix(key, "/")
	name = strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(name)
	return "SITEPUB_PARAM_" + strings.ToUpper(name)
}
