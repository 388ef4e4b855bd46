// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package scoring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/AliTurkarslan/whereto-sub000/internal/cache"
	"github.com/AliTurkarslan/whereto-sub000/internal/config"
	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/metrics"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

const scoreKeyPrefix = "score:"

// ScoreCache stores companion-specific scores in Badger with a TTL and
// memoizes recent lookups in an in-process LRU.
//
// The memo also remembers misses for a short time so a burst of requests
// over the same candidates does not hit Badger repeatedly.
type ScoreCache struct {
	db    *badger.DB
	ttl   time.Duration
	memo  *cache.LRU[*Score]
	owned bool

	closeOnce sync.Once
	stopGC    chan struct{}
	gcDone    chan struct{}
}

// OpenScoreCache opens (or creates) the Badger database described by cfg.
// memoSize <= 0 disables the memo.
func OpenScoreCache(cfg *config.BadgerConfig, memoSize int, memoTTL time.Duration) (*ScoreCache, error) {
	if cfg == nil {
		return nil, errors.New("badger config is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create score cache directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open score cache: %w", err)
	}

	c := NewScoreCache(db, cfg.ScoreTTL, memoSize, memoTTL)
	c.owned = true

	if cfg.GCInterval > 0 && !cfg.InMemory {
		c.stopGC = make(chan struct{})
		c.gcDone = make(chan struct{})
		go c.gcLoop(cfg.GCInterval)
	}

	logging.Info().
		Bool("in_memory", cfg.InMemory).
		Str("path", cfg.Path).
		Dur("ttl", cfg.ScoreTTL).
		Msg("Score cache opened")

	return c, nil
}

// NewScoreCache wraps an already open Badger database. The caller keeps
// ownership of db.
func NewScoreCache(db *badger.DB, ttl time.Duration, memoSize int, memoTTL time.Duration) *ScoreCache {
	c := &ScoreCache{db: db, ttl: ttl}
	if memoSize > 0 {
		c.memo = cache.NewLRU[*Score](memoSize, memoTTL)
	}
	return c
}

func cacheKey(placeID string, companion models.Companion) string {
	return scoreKeyPrefix + placeID + ":" + string(companion.Normalize())
}

// Get returns the cached score, or ErrNotCached.
func (c *ScoreCache) Get(ctx context.Context, placeID string, companion models.Companion) (*Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cacheKey(placeID, companion)

	if c.memo != nil {
		if s, ok := c.memo.Get(key); ok {
			metrics.RecordCacheLookup("score_memo", true)
			if s == nil {
				return nil, ErrNotCached
			}
			return s, nil
		}
		metrics.RecordCacheLookup("score_memo", false)
	}

	var score Score
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &score)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.RecordCacheLookup("score_badger", false)
		if c.memo != nil {
			c.memo.Set(key, nil)
		}
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("read cached score %s: %w", key, err)
	}

	metrics.RecordCacheLookup("score_badger", true)
	if c.memo != nil {
		c.memo.Set(key, &score)
	}
	return &score, nil
}

// Put stores s under its place and companion.
func (c *ScoreCache) Put(ctx context.Context, s *Score) error {
	if s == nil || s.PlaceID == "" {
		return errors.New("score with place id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := *s
	stored.Companion = s.Companion.Normalize()
	key := cacheKey(stored.PlaceID, stored.Companion)

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("encode score: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("store score %s: %w", key, err)
	}

	if c.memo != nil {
		c.memo.Set(key, &stored)
	}
	return nil
}

// Delete removes the cached score. Missing keys are not an error.
func (c *ScoreCache) Delete(ctx context.Context, placeID string, companion models.Companion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := cacheKey(placeID, companion)
	if c.memo != nil {
		c.memo.Remove(key)
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete score %s: %w", key, err)
	}
	return nil
}

// Count returns the number of live cached scores.
func (c *ScoreCache) Count() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(scoreKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// gcLoop runs Badger value log garbage collection on a ticker.
func (c *ScoreCache) gcLoop(interval time.Duration) {
	defer close(c.gcDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopGC:
			return
		case <-ticker.C:
			if c.memo != nil {
				expired := c.memo.CleanupExpired()
				logging.Debug().Int("expired", expired).Int("memo_size", c.memo.Len()).Msg("Score memo swept")
			}
			// RunValueLogGC returns ErrNoRewrite when there is nothing to collect.
			for {
				if err := c.db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
		}
	}
}

// Close stops the GC loop and closes Badger if the cache opened it.
func (c *ScoreCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.stopGC != nil {
			close(c.stopGC)
			<-c.gcDone
		}
		if c.owned {
			err = c.db.Close()
		}
	})
	return err
}
