// Package config loads studykit settings from defaults, an optional YAML file
// and STUDYKIT_* environment variables, and validates them before any
// component is built.
package config
