package environments

import "strings"

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Staging     Environment = "staging"
	Test        Environment = "test"
)

// Parse maps an APP_ENV value to a known environment, defaulting to development.
func Parse(value string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(value))) {
	case Production, "prod":
		return Production
	case Staging:
		return Staging
	case Test:
		return Test
	default:
		return Development
	}
}
