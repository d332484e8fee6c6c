// Package config manages user-level settings stored at ~/.devkit/config.yaml.
// Every key can be overridden from the environment with the DEVKIT_ prefix,
// which is how DEVKIT_YES selects non-interactive confirmation for a whole
// process. Callers read settings here once and pass plain values down.
package config
