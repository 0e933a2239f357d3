package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/api"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/config"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/datagouv"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/logger"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store/xpgx"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/service/loader"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/service/metrics"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ecospheres [-env demo|prod] <load|metrics|serve>")
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()
	config.Init()

	envName := flag.String("env", "demo", "target environment (demo or prod)")
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}

	ctx := context.Background()

	env, err := config.Get(*envName)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	pool, err := xpgx.NewPool(ctx, env.DSN())
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer pool.Close()

	st := store.NewStore(pool)
	client := datagouv.NewClient(env.BaseURL())

	loaderService := loader.NewService(st, client, env.Prefix, env.TopicSlug, env.UniverseName,
		config.ThemeLabels(), config.WorkerCount())
	metricsService := metrics.NewService(st)

	switch flag.Arg(0) {
	case "load":
		res, err := loaderService.Load(ctx)
		if err != nil {
			logger.Fatal(ctx, err)
		}
		if err := metricsService.Compute(ctx, time.Now().UTC()); err != nil {
			logger.Fatal(ctx, err)
		}
		for _, f := range res.Failures {
			logger.Warnf(ctx, "failed %s %s: %s", f.Kind, f.ID, f.Error)
		}
	case "metrics":
		if err := metricsService.Compute(ctx, time.Now().UTC()); err != nil {
			logger.Fatal(ctx, err)
		}
	case "serve":
		svc, err := api.NewAPIService(loaderService, metricsService)
		if err != nil {
			logger.Fatal(ctx, err)
		}
		svc.Serve(config.ListenAddr())
	default:
		usage()
	}
}
