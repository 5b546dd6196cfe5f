// Package dbtest provisions the ephemeral Postgres databases integration
// tests need: a source and a target for the differ packages
// (internal/catalogsql, internal/engine), and a report database for
// internal/reportsink. It is the teacher's pkg/fixgres generalized from a
// single sandboxed schema to multiple whole databases on one shared
// container, since the catalog queries under test (internal/catalogsql,
// internal/rowdiscovery) enumerate every schema in pg_catalog and so cannot
// be isolated from each other by search_path alone the way the teacher's
// single-schema Sandbox was.
package dbtest

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"fmt"
	"net/url"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oss-tools/pgdbcompare/internal/dbconn"
	"github.com/oss-tools/pgdbcompare/pkg/fixgres"
)

// Boot starts the shared ephemeral Postgres instance once per test binary.
// Call it from TestMain before any NewDatabase call.
func Boot(t *testing.T, opts ...fixgres.Option) {
	t.Helper()
	fixgres.BootOnce(t, opts...)
}

// NewDatabase creates a fresh, empty database on the shared instance and
// returns connection details for it (internal/dbconn.Target), tearing the
// database down on test cleanup. Each call gets its own database, so
// catalog-wide queries run by one test never see another test's objects.
func NewDatabase(t *testing.T) dbconn.Target {
	t.Helper()

	admin := adminTarget(t)
	name := fmt.Sprintf("t_%x", randomSeed())

	adminDB, err := sql.Open("pgx", fixgres.ConnString())
	if err != nil {
		t.Fatalf("dbtest: open admin connection: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := adminDB.ExecContext(ctx, fmt.Sprintf(`CREATE DATABASE %s`, name)); err != nil {
		adminDB.Close()
		t.Fatalf("dbtest: create database %s: %v", name, err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = adminDB.ExecContext(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS %s WITH (FORCE)`, name))
		_ = adminDB.Close()
	})

	target := admin
	target.Database = name
	return target
}

// ExecOn runs a batch of DDL/DML statements against target, for seeding a
// test database's schema. Each statement is executed independently so one
// test can mix CREATE SCHEMA, CREATE TABLE, and INSERT statements in a
// single call.
func ExecOn(t *testing.T, target dbconn.Target, statements ...string) {
	t.Helper()

	connString, err := dbconn.ConnString(target)
	if err != nil {
		t.Fatalf("dbtest: connection string for %s: %v", target.Database, err)
	}
	db, err := sql.Open("pgx", connString)
	if err != nil {
		t.Fatalf("dbtest: open %s: %v", target.Database, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("dbtest: exec against %s: %v\nstatement: %s", target.Database, err, stmt)
		}
	}
}

// adminTarget parses the shared container's admin connection string into a
// dbconn.Target, used as the template every NewDatabase call derives its
// fresh database's Target from (same host/port/user/password, different
// Database).
func adminTarget(t *testing.T) dbconn.Target {
	t.Helper()
	u, err := url.Parse(fixgres.ConnString())
	if err != nil {
		t.Fatalf("dbtest: parse admin connection string: %v", err)
	}
	password, _ := u.User.Password()

	var port int
	if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
		t.Fatalf("dbtest: parse admin port %q: %v", u.Port(), err)
	}

	return dbconn.Target{
		Host:     u.Hostname(),
		Port:     port,
		Database: "", // overwritten by NewDatabase
		User:     u.User.Username(),
		Password: password,
	}
}

func randomSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}
