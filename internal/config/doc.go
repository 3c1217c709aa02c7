// Package config loads and validates the TOML configuration for the audit
// engine.
//
// Configuration is resolved from an explicit path, then
// ~/.config/fieldaudit/config.toml, then ./fieldaudit.toml. Missing files
// fall back to repository defaults so the CLI works out of the box. All path
// fields are expanded (including ~) and made absolute before use.
package config
