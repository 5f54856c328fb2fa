package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/config"
	"github.com/l1jgo/guestsync/internal/replica"
)

var peerNames = []string{"Ada", "Grace", "Linus", "", "Ken", "Barbara", "", "Edsger"}

// backend opens replicated records on the configured store and remembers
// them so a departed participant's record can be dropped.
type backend struct {
	cfg    config.StoreConfig
	rdb    *redis.Client
	log    *zap.Logger
	mu     sync.Mutex
	stores map[string]replica.Store
}

func newBackend(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (*backend, error) {
	b := &backend{cfg: cfg, log: log, stores: make(map[string]replica.Store)}
	if cfg.Backend != "redis" {
		return b, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	b.rdb = rdb
	return b, nil
}

// open creates a simulated peer's record with a published color and, for
// most peers, a profile name.
func (b *backend) open(id string) (replica.Store, error) {
	color := colorful.HappyColor().Hex()
	name := peerNames[rand.Intn(len(peerNames))]

	var st replica.Store
	if b.rdb == nil {
		ms := replica.NewMemoryStore(id)
		ms.SetColor(color)
		if name != "" {
			ms.SetProfile(&replica.Profile{Name: name})
		}
		st = ms
	} else {
		rs := replica.NewRedisStore(b.rdb, b.cfg.KeyPrefix, id, b.cfg.OpTimeout.Duration)
		if err := rs.PublishColor(color); err != nil {
			return nil, err
		}
		if name != "" {
			if err := rs.PublishProfile(replica.Profile{Name: name}); err != nil {
				return nil, err
			}
		}
		st = rs
	}

	b.mu.Lock()
	b.stores[id] = st
	b.mu.Unlock()
	return st, nil
}

// forget drops a departed participant's record.
func (b *backend) forget(id string) {
	b.mu.Lock()
	st := b.stores[id]
	delete(b.stores, id)
	b.mu.Unlock()

	rs, ok := st.(*replica.RedisStore)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rs.Forget(ctx); err != nil {
		b.log.Warn("forget replicated record failed", zap.String("key", rs.Key()), zap.Error(err))
	}
}

func (b *backend) Close() {
	if b.rdb != nil {
		b.rdb.Close()
	}
}
