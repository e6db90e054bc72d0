package cache

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("cache: key not found")

func Get(key string, conn redis.Conn) ([]byte, error) {
	data, err := redis.Bytes(conn.Do("GET", key))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrNotFound
	}
	return data, err
}

func Set(key string, value interface{}, conn redis.Conn) error {
	_, err := redis.String(conn.Do("SET", key, value))
	return err
}

// SetNX stores value only when key is absent and reports whether it did.
func SetNX(key string, value interface{}, conn redis.Conn) (bool, error) {
	_, err := redis.String(conn.Do("SET", key, value, "NX"))
	if errors.Is(err, redis.ErrNil) {
		return false, nil
	}
	return err == nil, err
}

func Del(key string, conn redis.Conn) error {
	_, err := conn.Do("DEL", key)
	return err
}

func Keys(pattern string, conn redis.Conn) ([]string, error) {
	return redis.Strings(conn.Do("KEYS", pattern))
}

// Lock takes a lease on key for ttl. token identifies the holder so only it
// can release the lease.
func Lock(key, token string, ttl time.Duration, conn redis.Conn) (bool, error) {
	_, err := redis.String(conn.Do("SET", key, token, "NX", "PX", ttl.Milliseconds()))
	if errors.Is(err, redis.ErrNil) {
		return false, nil
	}
	return err == nil, err
}

var unlockScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Unlock releases a lease taken with Lock. A lease that already expired or
// was taken over is left alone.
func Unlock(key, token string, conn redis.Conn) error {
	_, err := unlockScript.Do(conn, key, token)
	return err
}
