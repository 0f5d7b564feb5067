package config

import (
	"fmt"
	"net/url"
	"strings"
)

// DSN returns a pgx-compatible data source name.
// If ConnectionString is set, it is used directly (with SSL settings applied).
// Otherwise, builds a postgres:// URL from discrete fields.
func (d *DatabaseConfig) DSN() string {
	if d.ConnectionString != "" {
		return d.withSSLParams(d.ConnectionString)
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Database,
	}
	query := url.Values{}
	if d.SSLMode != "" {
		query.Set("sslmode", d.SSLMode)
	}
	if d.SSLRootCert != "" {
		query.Set("sslrootcert", d.SSLRootCert)
	}
	u.RawQuery = query.Encode()
	return u.String()
}

// withSSLParams appends sslmode and sslrootcert to a user-supplied DSN
// unless the DSN already carries them. Handles both URL and libpq
// keyword/value forms.
func (d *DatabaseConfig) withSSLParams(dsn string) string {
	if strings.Contains(dsn, "://") {
		if d.SSLMode != "" && !strings.Contains(dsn, "sslmode=") {
			dsn += urlParamSeparator(dsn) + "sslmode=" + url.QueryEscape(d.SSLMode)
		}
		if d.SSLRootCert != "" && !strings.Contains(dsn, "sslrootcert=") {
			dsn += urlParamSeparator(dsn) + "sslrootcert=" + url.QueryEscape(d.SSLRootCert)
		}
		return dsn
	}

	if d.SSLMode != "" && !strings.Contains(dsn, "sslmode=") {
		dsn += " sslmode=" + d.SSLMode
	}
	if d.SSLRootCert != "" && !strings.Contains(dsn, "sslrootcert=") {
		dsn += " sslrootcert='" + d.SSLRootCert + "'"
	}
	return dsn
}

func urlParamSeparator(dsn string) string {
	if strings.Contains(dsn, "?") {
		return "&"
	}
	return "?"
}

// EffectiveDatabaseName returns the canonical database name used for catalog
// introspection and alignment queries.
func (d *DatabaseConfig) EffectiveDatabaseName() (name string, source string, err error) {
	return resolveEffectiveDatabaseName(d.Database, d.ConnectionString)
}

func resolveEffectiveDatabaseName(databaseName string, connectionString string) (name string, source string, err error) {
	configDatabase := strings.TrimSpace(databaseName)
	dsn := strings.TrimSpace(connectionString)
	dsnDatabase, parseErr := parseDSNDatabaseName(dsn)
	if parseErr != nil {
		return "", "", parseErr
	}

	if configDatabase != "" {
		if dsnDatabase != "" && configDatabase != dsnDatabase {
			return "", "", fmt.Errorf(
				"database mismatch: database.database=%q but database.dsn targets %q",
				configDatabase,
				dsnDatabase,
			)
		}
		return configDatabase, "database.database", nil
	}

	if dsnDatabase != "" {
		return dsnDatabase, "dsn", nil
	}

	return "", "", fmt.Errorf(
		"no effective database name configured: set database.database or include /<database> in database.dsn/database.dsn_file",
	)
}

// parseDSNDatabaseName extracts the database targeted by a DSN without
// consulting the environment. pgconn.ParseConfig fills a missing database
// from PGDATABASE or the OS user name, which would make the resolved name
// depend on the machine running the server rather than on configuration.
func parseDSNDatabaseName(connectionString string) (string, error) {
	dsn := strings.TrimSpace(connectionString)
	if dsn == "" {
		return "", nil
	}

	if strings.Contains(dsn, "://") {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("database.dsn is invalid: %w", err)
		}
		if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
			return "", fmt.Errorf("database.dsn is invalid: unsupported scheme %q", parsed.Scheme)
		}
		return strings.TrimPrefix(parsed.Path, "/"), nil
	}

	value, err := keywordValueSetting(dsn, "dbname")
	if err != nil {
		return "", fmt.Errorf("database.dsn is invalid: %w", err)
	}
	return value, nil
}

// keywordValueSetting extracts one setting from a libpq keyword/value
// connection string (host=localhost dbname=textpair). Values may be
// single-quoted.
func keywordValueSetting(dsn string, keyword string) (string, error) {
	rest := dsn
	for rest != "" {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}

		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return "", fmt.Errorf("malformed setting near %q", rest)
		}
		key := strings.TrimSpace(rest[:eq])
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, "'") {
			end := strings.IndexByte(rest[1:], '\'')
			if end < 0 {
				return "", fmt.Errorf("unterminated quoted value for %q", key)
			}
			value = rest[1 : end+1]
			rest = rest[end+2:]
		} else if end := strings.IndexAny(rest, " \t"); end < 0 {
			value, rest = rest, ""
		} else {
			value, rest = rest[:end], rest[end:]
		}

		if key == keyword {
			return value, nil
		}
	}
	return "", nil
}
