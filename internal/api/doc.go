// Package api exposes the study service over JSON HTTP. Handlers decode and
// validate requests, call the service, and map its errors to status codes
// with client-safe messages.
package api
