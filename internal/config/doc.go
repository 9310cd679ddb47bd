// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation. A .env file in the working directory, when present, is
// loaded into the environment first. CRYPTOVIEW_* variables override a few
// deployment-specific fields after parsing (see EnvOverrides).
package config
