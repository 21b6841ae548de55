// Package config defines the application configuration structure and loads
// it from an optional YAML file plus ADLIFT_-prefixed environment variables,
// validating the result before the application starts.
package config
