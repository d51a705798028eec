package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/studykit/internal/redact"
)

// TestDatabaseURL returns the first non-empty database URL variable and its
// name, or two empty strings. Falling back to DATABASE_URL is logged since it
// may point at a non-test database.
func TestDatabaseURL(log *slog.Logger) (url, source string) {
	if log == nil {
		log = slog.Default()
	}
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		val := os.Getenv(name)
		if val == "" {
			continue
		}
		if name != EnvTestDatabaseURL {
			log.Warn("using fallback database URL variable",
				"used_var", name,
				"preferred_var", EnvTestDatabaseURL,
				"value", redact.URL(val))
		}
		return val, name
	}
	return "", ""
}
