package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/config"
	"github.com/dsp-ops/shift-planner/backend/internal/holiday"
	"github.com/dsp-ops/shift-planner/backend/internal/planner"
	"github.com/dsp-ops/shift-planner/backend/internal/repository"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// env holds the connections a command needs; close releases all of them.
type env struct {
	cfg   *config.Config
	repo  *repository.Repository
	close func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		_ = dbpool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &env{
		cfg:  cfg,
		repo: repository.NewRepository(cfg, dbpool),
		close: func() {
			_ = dbpool.Close()
		},
	}, nil
}

// holidayProvider returns the redis backed cache unless --no-cache is set. The returned
// func closes the redis client.
func (e *env) holidayProvider() (holiday.Provider, func()) {
	calendar := holiday.NewCalendar()
	if noCache {
		return calendar, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", e.cfg.Redis.Host, e.cfg.Redis.Port),
		Password:    e.cfg.Redis.Password,
		DB:          e.cfg.Redis.DB,
		DialTimeout: time.Duration(e.cfg.Redis.ConnectTimeout) * time.Second,
	})
	ttl := time.Duration(e.cfg.Planner.HolidayCacheTTL) * time.Second
	return holiday.NewCache(rdb, calendar, ttl), func() {
		_ = rdb.Close()
	}
}

func (e *env) newPlanner(holidays holiday.Provider) (*planner.Planner, error) {
	loc, err := time.LoadLocation(e.cfg.Planner.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", e.cfg.Planner.TimeZone, err)
	}

	return planner.New(e.repo, e.repo, holidays, planner.Options{
		Location:           loc,
		IgnoreExistingWork: !e.cfg.Planner.CountExistingWork,
		Logger:             slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}), nil
}
