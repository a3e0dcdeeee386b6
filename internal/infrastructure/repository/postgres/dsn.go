package postgres

import (
	"net/url"
	"strings"
)

// DSN tags URL-style DSNs with the service name and, when asked,
// disables binary results for prepared statements.
// Keyword-style DSNs pass through untouched.
func DSN(raw, applicationName string, disablePreparedBinary bool) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	setDefault := func(key, value string) {
		if value != "" && query.Get(key) == "" {
			query.Set(key, value)
		}
	}
	setDefault("application_name", strings.TrimSpace(applicationName))
	if disablePreparedBinary {
		setDefault("disable_prepared_binary_result", "yes")
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// DBName extracts the database name from either DSN style.
func DBName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}

	for _, token := range strings.Fields(trimmed) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}
