package config

import (
	"fmt"
	"strings"
)

// MissingConfigError reports every required setting that was absent from the
// environment, not just the first one encountered.
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s (export them in your shell or .env session)",
		strings.Join(e.Keys, ", "))
}

// UnsupportedSchemeError reports a DB_SCHEME outside the supported set.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported database scheme %q: supported schemes are %s",
		e.Scheme, strings.Join(SupportedSchemes(), " and "))
}
