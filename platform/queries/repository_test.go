package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeRedis understands the handful of commands the store issues.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: map[string][]byte{}} }

func (f *fakeRedis) GetContext(context.Context) (redis.Conn, error) { return fakeConn{f}, nil }

type fakeConn struct{ f *fakeRedis }

func (c fakeConn) Close() error                      { return nil }
func (c fakeConn) Err() error                        { return nil }
func (c fakeConn) Send(string, ...interface{}) error { return errors.New("not supported") }
func (c fakeConn) Flush() error                      { return nil }
func (c fakeConn) Receive() (interface{}, error)     { return nil, errors.New("not supported") }

func toBytes(v interface{}) []byte {
	switch v := v.(type) {
	case []byte:
		return append([]byte(nil), v...)
	case string:
		return []byte(v)
	default:
		return []byte(fmt.Sprint(v))
	}
}

func (c fakeConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	f := c.f
	f.mu.Lock()
	defer f.mu.Unlock()
	switch strings.ToUpper(cmd) {
	case "":
		return nil, nil
	case "GET":
		v, ok := f.data[args[0].(string)]
		if !ok {
			return nil, nil
		}
		return v, nil
	case "SET":
		key := args[0].(string)
		nx := false
		for _, a := range args[2:] {
			if a == "NX" {
				nx = true
			}
		}
		if _, exists := f.data[key]; nx && exists {
			return nil, nil
		}
		f.data[key] = toBytes(args[1])
		return "OK", nil
	case "DEL":
		key := args[0].(string)
		if _, ok := f.data[key]; !ok {
			return int64(0), nil
		}
		delete(f.data, key)
		return int64(1), nil
	case "KEYS":
		prefix := strings.TrimSuffix(args[0].(string), "*")
		var keys []interface{}
		for k := range f.data {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, []byte(k))
			}
		}
		return keys, nil
	case "EVALSHA":
		// the unlock script: args are sha, key count, key, token
		key, token := args[2].(string), toBytes(args[3])
		if string(f.data[key]) == string(token) {
			delete(f.data, key)
			return int64(1), nil
		}
		return int64(0), nil
	}
	return nil, fmt.Errorf("unexpected command %s", cmd)
}

func newRecord(t *testing.T, id string) *models.GameRecord {
	rec, err := engine.Initialize(id, "alice", models.DefaultSettings(), t0)
	require.NoError(t, err)
	return rec
}

func repositories() map[string]func() GameRepository {
	return map[string]func() GameRepository{
		"memory": func() GameRepository { return NewMemoryGames() },
		"redis":  func() GameRepository { return NewRedisGames(newFakeRedis(), time.Second) },
	}
}

func TestRepositories(t *testing.T) {
	for name, open := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("create and get", func(t *testing.T) {
				repo := open()
				require.NoError(t, repo.Create(ctx, newRecord(t, "abc")))
				require.ErrorIs(t, repo.Create(ctx, newRecord(t, "abc")), ErrGameExists)

				rec, err := repo.Get(ctx, "abc")
				require.NoError(t, err)
				require.Equal(t, "alice", rec.Creator)
				require.Equal(t, models.WaitingForPlayers, rec.Status)

				_, err = repo.Get(ctx, "nope")
				require.ErrorIs(t, err, ErrGameNotFound)
			})

			t.Run("update commits on success", func(t *testing.T) {
				repo := open()
				require.NoError(t, repo.Create(ctx, newRecord(t, "abc")))

				rec, err := repo.Update(ctx, "abc", func(g *engine.Game) error {
					if err := g.Join("bob", t0); err != nil {
						return err
					}
					return g.Start("alice", t0)
				})
				require.NoError(t, err)
				require.Equal(t, models.InProgress, rec.Status)

				stored, err := repo.Get(ctx, "abc")
				require.NoError(t, err)
				require.Len(t, stored.Players, 2)
				require.Equal(t, int64(1500), stored.Players[1].CashBalance)
				require.Equal(t, int64(20580), stored.BankBalance)
			})

			t.Run("update discards on failure", func(t *testing.T) {
				repo := open()
				require.NoError(t, repo.Create(ctx, newRecord(t, "abc")))

				_, err := repo.Update(ctx, "abc", func(g *engine.Game) error {
					require.NoError(t, g.Join("bob", t0))
					return g.Start("bob", t0)
				})
				require.ErrorIs(t, err, engine.ErrNotCreator)

				stored, err := repo.Get(ctx, "abc")
				require.NoError(t, err)
				require.Len(t, stored.Players, 1)
			})

			t.Run("update unknown game", func(t *testing.T) {
				repo := open()
				_, err := repo.Update(ctx, "nope", func(*engine.Game) error { return nil })
				require.ErrorIs(t, err, ErrGameNotFound)
			})

			t.Run("returned records are copies", func(t *testing.T) {
				repo := open()
				require.NoError(t, repo.Create(ctx, newRecord(t, "abc")))
				rec, err := repo.Get(ctx, "abc")
				require.NoError(t, err)
				rec.Players[0].CashBalance = 999

				again, err := repo.Get(ctx, "abc")
				require.NoError(t, err)
				require.Zero(t, again.Players[0].CashBalance)
			})

			t.Run("ids and delete", func(t *testing.T) {
				repo := open()
				require.NoError(t, repo.Create(ctx, newRecord(t, "b")))
				require.NoError(t, repo.Create(ctx, newRecord(t, "a")))

				ids, err := repo.IDs(ctx)
				require.NoError(t, err)
				require.Equal(t, []string{"a", "b"}, ids)

				require.NoError(t, repo.Delete(ctx, "a"))
				_, err = repo.Get(ctx, "a")
				require.ErrorIs(t, err, ErrGameNotFound)
			})
		})
	}
}

func TestRedisUpdateLocking(t *testing.T) {
	ctx := context.Background()
	f := newFakeRedis()
	repo := NewRedisGames(f, time.Second)
	repo.retries = 2
	repo.retryDelay = time.Millisecond
	require.NoError(t, repo.Create(ctx, newRecord(t, "abc")))

	t.Run("lock released after update", func(t *testing.T) {
		_, err := repo.Update(ctx, "abc", func(g *engine.Game) error { return g.Join("bob", t0) })
		require.NoError(t, err)
		_, held := f.data[lockKey("abc")]
		require.False(t, held)
	})

	t.Run("lock released after failed update", func(t *testing.T) {
		_, err := repo.Update(ctx, "abc", func(g *engine.Game) error { return g.Join("bob", t0) })
		require.ErrorIs(t, err, engine.ErrAlreadyJoined)
		_, held := f.data[lockKey("abc")]
		require.False(t, held)
	})

	t.Run("busy while another holder has the lease", func(t *testing.T) {
		f.data[lockKey("abc")] = []byte("someone-else")
		called := false
		_, err := repo.Update(ctx, "abc", func(*engine.Game) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, ErrGameBusy)
		require.False(t, called)
		require.Equal(t, "someone-else", string(f.data[lockKey("abc")]))
		delete(f.data, lockKey("abc"))
	})

	t.Run("lock keys are not game ids", func(t *testing.T) {
		f.data[lockKey("abc")] = []byte("x")
		ids, err := repo.IDs(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"abc"}, ids)
		delete(f.data, lockKey("abc"))
	})
}

func TestMemoryUpdateHonorsContext(t *testing.T) {
	repo := NewMemoryGames()
	require.NoError(t, repo.Create(context.Background(), newRecord(t, "abc")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Update(ctx, "abc", func(*engine.Game) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
