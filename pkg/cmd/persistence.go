package cmd

import (
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell/pkg/persistence"
	"github.com/inkwell-ai/inkwell/pkg/persistence/file"
	"github.com/inkwell-ai/inkwell/pkg/persistence/redisstore"
)

var supportedPersistenceProviders = []string{"file", "redis", "rediss"}

// NewPersistence builds a session store from a database URL, selecting the
// adapter by scheme. Unknown schemes fall back to the file store.
func NewPersistence(databaseURL string) (persistence.SessionRepository, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "redis", "rediss":
		repo, err := redisstore.NewRepository(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating redis session store: %w", err)
		}

		return repo, nil
	default:
		return file.NewRepository(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
