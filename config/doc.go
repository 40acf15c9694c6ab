// Package config handles configuration loading and validation.
//
// Configuration is read from a YAML file and validated using struct
// tags. A missing file is not an error: defaults are used instead.
package config
