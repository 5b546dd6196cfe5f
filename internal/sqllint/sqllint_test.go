package sqllint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsWellFormedStatement(t *testing.T) {
	assert.NoError(t, Validate(`CREATE SCHEMA "s1";`))
}

func TestValidateAcceptsMultipleStatements(t *testing.T) {
	assert.NoError(t, Validate(`DROP INDEX public.idx_a; CREATE INDEX idx_a ON public.t (a);`))
}

func TestValidateAcceptsDollarQuotedLiteral(t *testing.T) {
	assert.NoError(t, Validate(`INSERT INTO public.t (a) VALUES ($data_comparer$hi$data_comparer$::text);`))
}

func TestValidateRejectsMalformedSQL(t *testing.T) {
	err := Validate(`ALTER TABLE public.t ALTER COLUMN;`)
	assert.Error(t, err)
}
