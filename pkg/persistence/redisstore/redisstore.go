// Package redisstore provides a Redis-backed session repository, for
// deployments where session state should live off the local disk (e.g. the
// web front end running in a container).
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkwell-ai/inkwell/pkg/models"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
)

const (
	stateKeyPrefix = "inkwell:session:"
	registryKey    = "inkwell:sessions"
)

// Repository implements persistence.SessionRepository on Redis. Records are
// JSON blobs; the registry is a sorted set scored by last-update time so the
// latest session is always O(1) away.
type Repository struct {
	client *redis.Client
}

// NewRepository connects to Redis using a redis:// URL.
func NewRepository(url string) (*Repository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &Repository{client: redis.NewClient(opts)}, nil
}

func stateKey(sessionID string) string {
	return stateKeyPrefix + sessionID
}

func draftKey(sessionID string, iteration int) string {
	return fmt.Sprintf("%s%s:draft:%d", stateKeyPrefix, sessionID, iteration)
}

func outputKey(sessionID, name string) string {
	return fmt.Sprintf("%s%s:output:%s", stateKeyPrefix, sessionID, name)
}

func (r *Repository) SaveState(ctx context.Context, state *models.SessionState) error {
	now := time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}

	state.UpdatedAt = now

	data, err := json.Marshal(state)
	if err != nil {
		return persistence.NewSessionError("SaveState", state.SessionID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, stateKey(state.SessionID), data, 0)
	pipe.ZAdd(ctx, registryKey, redis.Z{
		Score:  float64(state.UpdatedAt.UnixMilli()),
		Member: state.SessionID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewSessionError("SaveState", state.SessionID, err)
	}

	return nil
}

func (r *Repository) StateByID(ctx context.Context, sessionID string) (*models.SessionState, error) {
	body, err := r.client.Get(ctx, stateKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewSessionError("StateByID", sessionID, persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("StateByID", sessionID, err)
	}

	var state models.SessionState

	if err := json.Unmarshal(body, &state); err != nil {
		return nil, persistence.NewSessionError("StateByID", sessionID,
			fmt.Errorf("%w: %w", persistence.ErrCorruptState, err))
	}

	return &state, nil
}

func (r *Repository) Sessions(ctx context.Context) ([]*models.SessionInfo, error) {
	ids, err := r.client.ZRevRange(ctx, registryKey, 0, -1).Result()
	if err != nil {
		return nil, persistence.NewSessionError("Sessions", "", err)
	}

	infos := make([]*models.SessionInfo, 0, len(ids))

	for _, id := range ids {
		state, err := r.StateByID(ctx, id)
		if err != nil {
			if persistence.IsSessionNotFound(err) {
				continue // registry entry outlived its record
			}

			return nil, err
		}

		infos = append(infos, &models.SessionInfo{
			SessionID: state.SessionID,
			Stage:     state.Stage,
			Iteration: state.Iteration,
			CreatedAt: state.CreatedAt,
			UpdatedAt: state.UpdatedAt,
		})
	}

	return infos, nil
}

func (r *Repository) LatestSessionID(ctx context.Context) (string, error) {
	ids, err := r.client.ZRevRange(ctx, registryKey, 0, 0).Result()
	if err != nil {
		return "", persistence.NewSessionError("LatestSessionID", "", err)
	}

	if len(ids) == 0 {
		return "", persistence.NewSessionError("LatestSessionID", "", persistence.ErrSessionNotFound)
	}

	return ids[0], nil
}

func (r *Repository) SaveDraft(ctx context.Context, sessionID string, iteration int, content string) (string, error) {
	key := draftKey(sessionID, iteration)

	if err := r.client.Set(ctx, key, content, 0).Err(); err != nil {
		return "", persistence.NewSessionError("SaveDraft", sessionID, err)
	}

	return key, nil
}

func (r *Repository) SaveOutput(ctx context.Context, sessionID, name, content string) (string, error) {
	key := outputKey(sessionID, name)

	if err := r.client.Set(ctx, key, content, 0).Err(); err != nil {
		return "", persistence.NewSessionError("SaveOutput", sessionID, err)
	}

	return key, nil
}

func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	keys, err := r.client.Keys(ctx, stateKey(sessionID)+"*").Result()
	if err != nil {
		return persistence.NewSessionError("DeleteSession", sessionID, err)
	}

	pipe := r.client.TxPipeline()

	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}

	pipe.ZRem(ctx, registryKey, sessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewSessionError("DeleteSession", sessionID, err)
	}

	return nil
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Repository) Close(_ context.Context) error {
	return r.client.Close()
}
