package utils

import (
	"os"
	"strings"
)

// IsProd returns true if the application is running in production environment
func IsProd() bool {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	return env == "production" || env == "prod"
}

// IsDev returns true if the application is running in development environment
func IsDev() bool {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	return env == "development" || env == "dev" || env == ""
}

// IsTest returns true while running under ENVIRONMENT=test
func IsTest() bool {
	return strings.ToLower(os.Getenv("ENVIRONMENT")) == "test"
}
