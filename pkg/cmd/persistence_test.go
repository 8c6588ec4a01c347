package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/pkg/persistence/file"
	"github.com/inkwell-ai/inkwell/pkg/persistence/redisstore"
)

func TestParsePersistenceProvider(t *testing.T) {
	assert.Equal(t, "file", parsePersistenceProvider("file:///var/lib/inkwell"))
	assert.Equal(t, "redis", parsePersistenceProvider("redis://localhost:6379/0"))
	assert.Equal(t, "rediss", parsePersistenceProvider("rediss://secure-host:6380/1"))

	// plain paths and unknown schemes fall back to file
	assert.Equal(t, "file", parsePersistenceProvider("./sessions"))
	assert.Equal(t, "file", parsePersistenceProvider("mongodb://localhost"))
}

func TestNewPersistence_File(t *testing.T) {
	repo, err := NewPersistence("file://" + t.TempDir())
	require.NoError(t, err)

	_, ok := repo.(*file.Repository)
	assert.True(t, ok)
}

func TestNewPersistence_PlainPathIsFile(t *testing.T) {
	repo, err := NewPersistence(t.TempDir())
	require.NoError(t, err)

	_, ok := repo.(*file.Repository)
	assert.True(t, ok)
}

func TestNewPersistence_Redis(t *testing.T) {
	repo, err := NewPersistence("redis://localhost:6379/0")
	require.NoError(t, err)

	_, ok := repo.(*redisstore.Repository)
	assert.True(t, ok)
}

func TestNewPersistence_BadRedisURL(t *testing.T) {
	_, err := NewPersistence("redis://bad url with spaces")

	assert.Error(t, err)
}
