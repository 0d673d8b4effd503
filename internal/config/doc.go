// Package config loads, normalizes, and validates hopper's TOML
// configuration.
//
// Configuration is resolved from an explicit path, then
// ~/.config/hopper/config.toml, then ./hopper.toml. Missing files resolve to
// repository defaults so the CLI works out of the box against a local
// backend. All path fields are tilde-expanded and made absolute during
// normalization; callers never see raw user input.
package config
