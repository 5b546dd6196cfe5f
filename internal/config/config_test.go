package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	return Options{
		BlockSize:        500,
		SourceConnection: "src.host:5432:appdb:user:pw",
		TargetConnection: "tgt.host:5432:appdb:user:pw",
		OutputConnection: "rep.host:5432:reportdb:user:pw",
	}
}

func TestBuildRejectsNonPositiveBlockSize(t *testing.T) {
	opts := validOptions()
	opts.BlockSize = 0
	_, err := Build(opts)
	assert.Error(t, err)
}

func TestBuildRequiresExactlyOneOutputTarget(t *testing.T) {
	opts := validOptions()
	opts.OutputConnection = ""
	_, err := Build(opts)
	assert.Error(t, err)
}

func TestBuildAcceptsXlsxOutputFile(t *testing.T) {
	opts := validOptions()
	opts.OutputConnection = ""
	opts.OutputFile = "report.xlsx"
	cfg, err := Build(opts)
	require.NoError(t, err)
	assert.Equal(t, "report.xlsx", cfg.OutputFile)
	assert.Empty(t, cfg.OutputDatabase.Host)
}

func TestBuildRejectsNonXlsxOutputFile(t *testing.T) {
	opts := validOptions()
	opts.OutputConnection = ""
	opts.OutputFile = "report.csv"
	_, err := Build(opts)
	assert.Error(t, err)
}

func TestBuildParsesExcludeTables(t *testing.T) {
	opts := validOptions()
	opts.ExcludeTables = []string{"public.audit_log", "reporting.raw_events"}
	cfg, err := Build(opts)
	require.NoError(t, err)
	assert.True(t, cfg.IsExcluded("public", "audit_log"))
	assert.True(t, cfg.IsExcluded("reporting", "raw_events"))
	assert.False(t, cfg.IsExcluded("public", "other"))
}

func TestBuildRejectsMalformedExcludeEntry(t *testing.T) {
	opts := validOptions()
	opts.ExcludeTables = []string{"not_schema_qualified"}
	_, err := Build(opts)
	assert.Error(t, err)
}
