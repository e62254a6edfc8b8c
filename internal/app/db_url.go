package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL tags the connection with application_name so sessions show
// up by service in pg_stat_activity. An explicit value in the DSN wins. Both
// URL and key=value DSNs are accepted, as lib/pq does.
func normalizeDBURL(raw, applicationName string) string {
	applicationName = strings.TrimSpace(applicationName)
	if applicationName == "" {
		return raw
	}

	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		query := parsed.Query()
		if query.Get("application_name") == "" {
			query.Set("application_name", applicationName)
			parsed.RawQuery = query.Encode()
		}
		return parsed.String()
	}

	if trimmed == "" {
		return raw
	}
	for _, token := range strings.Fields(trimmed) {
		if strings.HasPrefix(token, "application_name=") {
			return raw
		}
	}
	return trimmed + " application_name=" + quoteDSNValue(applicationName)
}

func quoteDSNValue(value string) string {
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}
