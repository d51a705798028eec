// Package ciutil detects CI environments and resolves the integration test
// database URL from the environment.
package ciutil
