package ciutil

import "os"

// CI detection variables set by common providers.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"
)

// Database URL variables, in lookup order.
const (
	EnvTestDatabaseURL = "STUDYKIT_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// IsCI reports whether the process runs under a known CI provider.
func IsCI() bool {
	for _, name := range []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
