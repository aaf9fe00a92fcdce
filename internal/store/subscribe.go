package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

// DataVersion returns PRAGMA data_version, which changes whenever another
// connection commits to the database file.
func (db *DB) DataVersion(ctx context.Context) (int64, error) {
	var v int64
	err := db.conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v)
	return v, err
}

// keyVersion returns the version and origin of key, or zero when absent.
func (db *DB) keyVersion(ctx context.Context, key string) (int64, string, error) {
	var (
		v      int64
		origin string
	)
	err := db.conn.QueryRowContext(ctx, `SELECT version, origin FROM kv WHERE key = ?`, key).Scan(&v, &origin)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", nil
	}
	return v, origin, err
}

// Subscribe calls fn whenever key is changed by a different DB handle,
// possibly in another process. Changes made through db itself are not
// reported. The returned cancel stops polling and waits for it to exit.
func (db *DB) Subscribe(key string, fn func()) (cancel func()) {
	interval := db.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		db.poll(ctx, key, interval, fn)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			<-done
		})
	}
}

func (db *DB) poll(ctx context.Context, key string, interval time.Duration, fn func()) {
	log := db.logger()

	dataVersion, err := db.DataVersion(ctx)
	if err != nil {
		log.Warn("store: initial data version failed", "error", err)
	}
	seen, _, err := db.keyVersion(ctx, key)
	if err != nil {
		log.Warn("store: initial key version failed", "key", key, "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cur, err := db.DataVersion(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("store: data version check failed", "error", err)
			}
			continue
		}
		if cur == dataVersion {
			continue
		}
		dataVersion = cur

		v, origin, err := db.keyVersion(ctx, key)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("store: key version check failed", "key", key, "error", err)
			}
			continue
		}
		if v == seen {
			continue
		}
		seen = v
		if origin == db.origin {
			continue
		}
		log.Debug("store: key changed elsewhere", "key", key, "version", v)
		fn()
	}
}
