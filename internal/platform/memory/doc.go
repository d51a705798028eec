// Package memory provides in-process implementations of the store
// interfaces. It is the default backend when no database is configured and
// the backend used by the CLI.
package memory
