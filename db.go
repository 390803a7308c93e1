package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"minisocial/internal/config"
	"minisocial/internal/media"
	"minisocial/internal/session"
	"minisocial/internal/social"
	"minisocial/internal/store"
)

// backends are the stores the service runs on.
type backends struct {
	store    *store.Store
	sessions social.SessionStore
	media    *media.DiskStore
	closers  []func() error
}

func (b *backends) Close() {
	for _, c := range b.closers {
		c()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*backends, error) {
	b := &backends{}

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	b.store = st
	b.closers = append(b.closers, st.Close)

	switch cfg.SessionBackend {
	case config.SessionRedis:
		rs, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.sessions = rs
	default:
		b.sessions = session.NewMemoryStore()
	}

	b.media, err = media.NewDiskStore(cfg.UploadDir)
	if err != nil {
		b.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"database": cfg.Database,
		"sessions": cfg.SessionBackend,
		"uploads":  cfg.UploadDir,
	}).Info("backends ready")
	return b, nil
}
