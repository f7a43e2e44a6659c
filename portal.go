// Package portal wires the CAFSI training components together for embedding
// front ends: the record store, authentication, authoring, reporting, and
// quiz session engines.
package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/cafsi-mindset/portal/auth"
	"github.com/cafsi-mindset/portal/config"
	"github.com/cafsi-mindset/portal/db"
	"github.com/cafsi-mindset/portal/manage"
	"github.com/cafsi-mindset/portal/model"
	"github.com/cafsi-mindset/portal/report"
	"github.com/cafsi-mindset/portal/session"
	"github.com/cafsi-mindset/portal/store"
)

type App struct {
	Store  *store.Store
	Auth   *auth.Service
	Manage *manage.Service
	Report *report.Service

	close func() error
}

// Open connects the storage medium, seeds it on first use, and builds the
// services.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	conn, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	st := store.New(conn)
	if cfg.SeedDemoData {
		if err := st.Init(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("seed storage: %w", err)
		}
	}

	return &App{
		Store:  st,
		Auth:   auth.NewService(st, cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour),
		Manage: manage.NewService(st),
		Report: report.NewService(st),
		close:  conn.Close,
	}, nil
}

// NewSession builds a quiz session engine for one attempt by the given
// trainee. Engines are single-attempt; build a fresh one per quiz start.
func (a *App) NewSession(user model.User) *session.Engine {
	return session.New(a.Store, user)
}

func (a *App) Close() error { return a.close() }
