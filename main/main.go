package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MetalBlockchain/metalgo/database/leveldb"
	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/MetalBlockchain/metalgo/utils/ulimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sealchain-project/sealchain/chain/constants"
	"github.com/sealchain-project/sealchain/config"
	"github.com/sealchain-project/sealchain/node"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	fs := config.BuildFlagSet()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf("couldn't parse flags: %s\n", err)
		os.Exit(1)
	}

	if version, _ := fs.GetBool(config.VersionKey); version {
		fmt.Println(constants.Version)
		os.Exit(0)
	}

	cfg, err := config.New(fs)
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}

	logLevel, err := logging.ToLevel(cfg.LogLevel)
	if err != nil {
		fmt.Printf("couldn't parse log level: %s\n", err)
		os.Exit(1)
	}
	logFactory := logging.NewFactory(logging.Config{
		LogLevel:     logLevel,
		DisplayLevel: logLevel,
	})
	defer logFactory.Close()

	log, err := logFactory.Make("main")
	if err != nil {
		fmt.Printf("couldn't make logger: %s\n", err)
		os.Exit(1)
	}

	if err := ulimit.Set(ulimit.DefaultFDLimit, log); err != nil {
		log.Fatal("failed to set fd limit correctly",
			zap.Error(err),
		)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	db, err := leveldb.New(cfg.DBDir, nil, log, registry)
	if err != nil {
		log.Fatal("failed to open block database",
			zap.String("dbDir", cfg.DBDir),
			zap.Error(err),
		)
		os.Exit(1)
	}

	n, err := node.New(cfg, db, log, registry)
	if err != nil {
		log.Fatal("failed to initialize node",
			zap.Error(err),
		)
		os.Exit(1)
	}

	handlers, err := n.CreateHandlers()
	if err != nil {
		log.Fatal("failed to create handlers",
			zap.Error(err),
		)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.Handle(path, handler)
	}
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("server listening",
		zap.String("addr", cfg.HTTPAddr),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("http server failed",
			zap.Error(err),
		)
	case sig := <-sigCh:
		log.Info("shutting down",
			zap.Stringer("signal", sig),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to stop http server",
			zap.Error(err),
		)
	}
	if err := n.Shutdown(); err != nil {
		log.Error("failed to shut down node",
			zap.Error(err),
		)
	}
}
