package dbconn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplitsAllFiveFields(t *testing.T) {
	target, err := Parse("db.internal:5432:appdb:svc_user:s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, Target{Host: "db.internal", Port: 5432, Database: "appdb", User: "svc_user", Password: "s3cr3t"}, target)
}

func TestParseAllowsEmptyPassword(t *testing.T) {
	target, err := Parse("db.internal:5432:appdb:svc_user")
	require.NoError(t, err)
	assert.Equal(t, "", target.Password)
}

func TestParseRejectsTooFewFields(t *testing.T) {
	_, err := Parse("db.internal:5432:appdb")
	assert.Error(t, err)
}

func TestParseRejectsNonNumericPort(t *testing.T) {
	_, err := Parse("db.internal:notaport:appdb:svc_user")
	assert.Error(t, err)
}

func TestResolvePasswordReturnsInlinePasswordUnchanged(t *testing.T) {
	target := Target{Host: "h", Port: 5432, Database: "d", User: "u", Password: "inline"}
	pw, err := target.ResolvePassword()
	require.NoError(t, err)
	assert.Equal(t, "inline", pw)
}

func TestResolvePasswordFallsBackToPgpass(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	pgpass := "h:5432:d:u:from-pgpass\n*:*:*:wildcard_user:wildcard-secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".pgpass"), []byte(pgpass), 0o600))

	target := Target{Host: "h", Port: 5432, Database: "d", User: "u"}
	pw, err := target.ResolvePassword()
	require.NoError(t, err)
	assert.Equal(t, "from-pgpass", pw)

	wildcard := Target{Host: "anyhost", Port: 9999, Database: "anydb", User: "wildcard_user"}
	pw, err = wildcard.ResolvePassword()
	require.NoError(t, err)
	assert.Equal(t, "wildcard-secret", pw)
}

func TestResolvePasswordErrorsWithoutMatchOrFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := Target{Host: "h", Port: 5432, Database: "d", User: "u"}
	_, err := target.ResolvePassword()
	assert.Error(t, err)
}
