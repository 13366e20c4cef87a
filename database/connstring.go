package database

import "strings"

// NormalizeConnectionString turns the shorthand "host[,port][;options]" form into a
// key/value SQL Server connection string. It:
// - Returns blank input unchanged
// - Trims surrounding whitespace
// - Prefixes "Server=" when the first ";"-separated segment has no "="
func NormalizeConnectionString(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	connString := strings.TrimSpace(raw)

	firstSegment := connString
	if i := strings.IndexByte(connString, ';'); i >= 0 {
		firstSegment = connString[:i]
	}

	// "tcp:server.database.windows.net,1433;Database=..." becomes
	// "Server=tcp:server.database.windows.net,1433;Database=..."
	if !strings.Contains(firstSegment, "=") {
		return "Server=" + connString
	}

	return connString
}
