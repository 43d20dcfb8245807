// Package config exposes the configuration error contract shared by the
// loader and its callers.
package config

import "errors"

// ErrConfigLoad indicates the configuration file could not be evaluated.
var ErrConfigLoad = errors.New("config: failed to load configuration")
