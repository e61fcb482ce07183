package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RejectsBadInput(t *testing.T) {
	_, err := Open(context.Background(), Postgres, "")
	require.Error(t, err)

	_, err = Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")

	_, err = Open(context.Background(), MySQL, "not a dsn")
	require.Error(t, err)
}

func TestSchemasCoverBothDialects(t *testing.T) {
	for _, d := range []string{Postgres, MySQL} {
		assert.NotEmpty(t, schemas[d], d)
	}
}
