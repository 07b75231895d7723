// Package config loads gateway configuration from the environment using
// envconfig. Every field has a default, so an empty environment yields a
// server on port 3000 working against the current directory.
package config
