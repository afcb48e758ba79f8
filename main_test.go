package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("STORE_DRIVER", "postgres")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")

	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_URI", "not-a-mongo-uri")
	err = run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to MongoDB")
}
