package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/config"
	"github.com/carelink-ndis/care-roster/backend/internal/repository"
	"github.com/carelink-ndis/care-roster/backend/internal/seed"
	"github.com/carelink-ndis/care-roster/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var rateCardPath string

	flag.IntVar(&op, "op", 0, "operation (1: random coordinators, 2: random carers, 3: random clients, 4: import rate card)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.StringVar(&rateCardPath, "rate-card", "", "rate card CSV, defaults to SEED_RATE_CARD_PATH")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	ctx = context.Background()

	if op >= 1 && op <= 3 && n <= 0 {
		slog.Error("n must be positive", slog.Int("n", n))
		return
	}

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		cnt := 0
		for range n {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("failed to generate user", slog.String("error", err.Error()))
				continue
			}
			if err := repo.CreateUser(ctx, user); err != nil {
				slog.Error("failed to insert user", slog.String("username", user.Username), slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		slog.Info("inserted coordinators", slog.Int("count", cnt))
	case 2:
		cnt := 0
		for range n {
			carer := utils.GenerateRandomCarer(cfg.Email.UserDomain)
			if err := repo.CreateCarer(ctx, carer); err != nil {
				slog.Error("failed to insert carer", slog.String("email", carer.Email), slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		slog.Info("inserted carers", slog.Int("count", cnt))
	case 3:
		cnt := 0
		for range n {
			client := utils.GenerateRandomClient(cfg.Email.UserDomain)
			if err := repo.CreateClient(ctx, client); err != nil {
				slog.Error("failed to insert client", slog.String("ndis_number", client.NDISNumber), slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		slog.Info("inserted clients", slog.Int("count", cnt))
	case 4:
		path := rateCardPath
		if path == "" {
			path = cfg.Seed.RateCardPath
		}
		cnt, err := seed.ImportRateCard(ctx, repo, path)
		if err != nil {
			slog.Error("failed to import rate card", slog.String("path", path), slog.String("error", err.Error()))
			return
		}
		slog.Info("imported rate card", slog.String("path", path), slog.Int("count", cnt))
	default:
		slog.Error("unknown operation", slog.Int("op", op))
	}
}
