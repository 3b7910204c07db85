package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/reports/")
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Upload(ctx, strings.NewReader("a,b\n"), "payroll/o1/report.csv", "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "payroll/o1/report.csv", key)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := s.Download(ctx, key)
	require.NoError(t, err)
	defer r.Close()
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(content))

	assert.Equal(t, "http://localhost:8080/reports/payroll/o1/report.csv", s.URL(key))

	ok, err = s.Exists(ctx, "payroll/o1/missing.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	for _, path := range []string{"../secret", "a/../../secret", ""} {
		_, err := s.Upload(context.Background(), strings.NewReader("x"), path, "text/plain")
		assert.ErrorIs(t, err, ErrInvalidPath, path)
	}
}
