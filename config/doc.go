// Package config loads the storekeeper configuration from a YAML file and
// STOREKEEPER_* environment variables.
package config
