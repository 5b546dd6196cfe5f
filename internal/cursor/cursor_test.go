package cursor_test

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-tools/pgdbcompare/internal/cursor"
	"github.com/oss-tools/pgdbcompare/internal/dbconn"
	"github.com/oss-tools/pgdbcompare/internal/dbtest"
)

// TestMain boots the shared ephemeral Postgres instance once for every test
// in this package, matching the teacher's fixgres_demo TestMain pattern.
func TestMain(m *testing.M) {
	dbtest.Boot(&testing.T{})
	os.Exit(m.Run())
}

func TestBlockRefillsAcrossMultipleBlocks(t *testing.T) {
	ctx := context.Background()
	target := dbtest.NewDatabase(t)
	dbtest.ExecOn(t, target,
		`CREATE TABLE widgets (id int PRIMARY KEY, name text)`,
		`INSERT INTO widgets (id, name) SELECT g, 'w' || g FROM generate_series(1, 7) g`,
	)

	cfg, err := dbconn.ConnConfig(target)
	require.NoError(t, err)
	conn, err := pgx.ConnectConfig(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close(ctx)

	// blockSize of 3 forces Next to refill three times over 7 rows,
	// exercising fill()'s buffer-reset path rather than a single fetch.
	c := cursor.New(conn, "widgets", `SELECT id, name FROM widgets ORDER BY id`, 3)

	var ids []int64
	for {
		row, ok, err := c.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		id, err := strconv.ParseInt(row.MustGet("id").String(), 10, 64)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, ids)
	assert.True(t, c.Exhausted())
	assert.Equal(t, []string{"id", "name"}, c.Columns())
}

func TestBlockOnEmptyTableIsImmediatelyExhausted(t *testing.T) {
	ctx := context.Background()
	target := dbtest.NewDatabase(t)
	dbtest.ExecOn(t, target, `CREATE TABLE empty_widgets (id int PRIMARY KEY)`)

	cfg, err := dbconn.ConnConfig(target)
	require.NoError(t, err)
	conn, err := pgx.ConnectConfig(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close(ctx)

	c := cursor.New(conn, "empty_widgets", `SELECT id FROM empty_widgets`, 10)

	_, ok, err := c.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, c.Exhausted())
}

func TestEmptyConstructsAnAlreadyExhaustedCursorWithGivenColumns(t *testing.T) {
	c := cursor.Empty([]string{"id", "name"})

	assert.True(t, c.Exhausted())
	assert.Equal(t, []string{"id", "name"}, c.Columns())

	_, ok, err := c.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
