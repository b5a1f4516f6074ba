package api

import (
    "context"
    "strings"

    "agrinav/internal/config"
    "agrinav/internal/opt"
    "agrinav/internal/store"
)

type Server struct {
    Store  store.Store
    Opt    *opt.Optimizer
    Broker EventBroker
    Cfg    config.Config
}

// NewServer creates a Server. With no database_url configured the in-memory
// store is used; with no redis_url the in-process broker is used.
func NewServer(cfg config.Config) (*Server, error) {
    var s store.Store
    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        s = store.NewMemory()
    } else {
        sp, err := store.NewPostgres(cfg.DatabaseURL)
        if err != nil {
            return nil, err
        }
        // Run migrations (dev helper)
        if err := sp.Migrate(context.Background()); err != nil {
            return nil, err
        }
        s = sp
    }
    var broker EventBroker
    if cfg.RedisURL != "" {
        if rb, err := NewRedisBroker(cfg.RedisURL); err == nil { broker = rb } else { broker = NewBroker() }
    } else {
        broker = NewBroker()
    }
    o := opt.NewOptimizer(s)
    o.Defaults = cfg.DefaultWeights
    o.SpeedKmph = cfg.SpeedKmph
    return &Server{Store: s, Opt: o, Broker: broker, Cfg: cfg}, nil
}
