// Package store keeps uploaded GIF streams in Redis so that animations
// survive a server restart.
package store

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "fig:"

var ErrNotFound = errors.New("animation not found")

type DB redis.Client

func NewDB(redisURL string) (*DB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	db := redis.NewClient(opt)
	if err := db.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return (*DB)(db), nil
}

func (db *DB) client() *redis.Client {
	return (*redis.Client)(db)
}

// SaveAnimation stores the GIF stream of an animation. It is deleted after
// expiration unless expiration is 0.
func (db *DB) SaveAnimation(ctx context.Context, id string, gif []byte, expiration time.Duration) error {
	return db.client().Set(ctx, keyPrefix+id, gif, expiration).Err()
}

func (db *DB) LoadAnimation(ctx context.Context, id string) ([]byte, error) {
	gif, err := db.client().Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return gif, err
}

// Touch resets the expiration of an animation.
func (db *DB) Touch(ctx context.Context, id string, expiration time.Duration) error {
	ok, err := db.client().Expire(ctx, keyPrefix+id, expiration).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Persist removes the expiration of an animation until the next Touch.
func (db *DB) Persist(ctx context.Context, id string) error {
	ok, err := db.client().Persist(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	// Either missing or already without expiration.
	n, err := db.client().Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	return db.client().Del(ctx, keyPrefix+id).Err()
}

// Keys returns the IDs of every stored animation.
func (db *DB) Keys(ctx context.Context) ([]string, error) {
	var ids []string
	iter := db.client().Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	return ids, iter.Err()
}

// LoadAnimations returns every stored GIF stream by ID. Entries that cannot
// be read are logged and left out.
func (db *DB) LoadAnimations(ctx context.Context) map[string][]byte {
	ids, err := db.Keys(ctx)
	if err != nil {
		log.Println("Redis error:", err)
		return nil
	}
	results := make(map[string][]byte)
	for _, id := range ids {
		gif, err := db.LoadAnimation(ctx, id)
		if err != nil {
			log.Println("Redis error:", err)
			continue
		}
		results[id] = gif
	}
	return results
}

func (db *DB) Close() error {
	return db.client().Close()
}
