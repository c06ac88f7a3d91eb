// Package config loads, normalizes, and validates encoderkit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ENCODERKIT_FFMPEG and the AWS credential variables. The Config type gathers
// every knob the resolver, downloader, and CLI need so the managed cache
// directory, download sources, and timeouts are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
