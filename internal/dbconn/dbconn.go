// Package dbconn turns the tool's HOST:PORT:DATABASE:USER:PASSWORD
// connection arguments into a pgx connection config, the same shape
// original_source's CLI accepts for each side of a comparison, plus the
// empty-password lookup in a libpq-style ~/.pgpass file (SPEC_FULL's
// "supplemented" pgpass feature).
package dbconn

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Target identifies one side of a comparison (source or target database).
type Target struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Parse splits a "HOST:PORT:DATABASE:USER:PASSWORD" argument into a Target.
// PASSWORD may be empty, in which case ResolvePassword falls back to
// ~/.pgpass.
func Parse(spec string) (Target, error) {
	parts := strings.SplitN(spec, ":", 5)
	if len(parts) < 4 {
		return Target{}, errors.Errorf("dbconn: %q must have at least HOST:PORT:DATABASE:USER", spec)
	}

	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return Target{}, errors.Wrapf(err, "dbconn: invalid port in %q", spec)
	}

	t := Target{
		Host:     parts[0],
		Port:     port,
		Database: parts[2],
		User:     parts[3],
	}
	if len(parts) == 5 {
		t.Password = parts[4]
	}
	return t, nil
}

// ResolvePassword returns t.Password unchanged when non-empty; otherwise it
// searches ~/.pgpass for a matching host:port:database:user line, per
// libpq's documented pgpass file format (colon-separated, "*" wildcards
// permitted in any field, lines starting with "#" are comments).
func (t Target) ResolvePassword() (string, error) {
	if t.Password != "" {
		return t.Password, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "dbconn: resolve home directory for .pgpass lookup")
	}

	f, err := os.Open(filepath.Join(home, ".pgpass"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Errorf("dbconn: no password given for %s@%s:%d/%s and no ~/.pgpass found", t.User, t.Host, t.Port, t.Database)
		}
		return "", errors.Wrap(err, "dbconn: open .pgpass")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 5 {
			continue
		}
		if pgpassMatches(fields[0], t.Host) && pgpassMatches(fields[1], strconv.Itoa(t.Port)) &&
			pgpassMatches(fields[2], t.Database) && pgpassMatches(fields[3], t.User) {
			return fields[4], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "dbconn: read .pgpass")
	}
	return "", errors.Errorf("dbconn: no matching ~/.pgpass entry for %s@%s:%d/%s", t.User, t.Host, t.Port, t.Database)
}

func pgpassMatches(field, value string) bool {
	return field == "*" || field == value
}

// ConnConfig builds a pgx.ConnConfig for t, resolving its password through
// ResolvePassword first.
func ConnConfig(t Target) (*pgx.ConnConfig, error) {
	connString, err := ConnString(t)
	if err != nil {
		return nil, err
	}
	return pgx.ParseConfig(connString)
}

// ConnString builds a postgres:// URL for t, resolving its password through
// ResolvePassword first. Used wherever a plain connection string is needed
// instead of a pgx.ConnConfig, e.g. opening a database/sql handle for goose
// migrations (internal/reportsink).
func ConnString(t Target) (string, error) {
	password, err := t.ResolvePassword()
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(t.User, password),
		Host:     fmt.Sprintf("%s:%d", t.Host, t.Port),
		Path:     "/" + t.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String(), nil
}
