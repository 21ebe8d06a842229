package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"

	"github.com/bridgebot/gowatch/internal/server"
	"github.com/bridgebot/gowatch/internal/services"
	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/pkg/config"
	"github.com/bridgebot/gowatch/pkg/logger"
	"github.com/bridgebot/gowatch/pkg/persistence"
	"github.com/bridgebot/gowatch/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", "", "config file path (.yaml, .yml or .json)")
	flag.Parse()

	// .env is optional, absence is not an error
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Errorf("[main] %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := persistence.NewJSONFileService(cfg.DataDir)
	statsStore := store.NewStore("gowatch", "stats", "last")
	prefsStore := store.NewStore("gowatch", "preferences", "current")

	readOnly, err := client.NewEthClient(client.Options{
		RPCURL:          cfg.RPCURL,
		WSURL:           cfg.WSURL,
		ContractAddress: cfg.ContractAddress,
		ChainID:         cfg.ChainID,
	})
	if err != nil {
		return err
	}

	wallet := &services.StaticWallet{}
	factory := services.ClientFactory(func(account string) (client.Client, error) {
		return nil, client.ErrSessionRequired
	})
	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return fmt.Errorf("parse private key: %w", err)
		}
		account := crypto.PubkeyToAddress(key.PublicKey).Hex()
		wallet.Accounts = []string{account}
		factory = func(string) (client.Client, error) {
			return client.NewEthClient(client.Options{
				RPCURL:          cfg.RPCURL,
				WSURL:           cfg.WSURL,
				ContractAddress: cfg.ContractAddress,
				ChainID:         cfg.ChainID,
				PrivateKey:      key,
			})
		}
	}

	session := services.NewSessionManager(wallet, readOnly, factory)
	if err := session.CheckAuthorized(ctx); err != nil {
		return fmt.Errorf("startup session check: %w", err)
	}

	hub := server.NewHub()
	refresher := services.NewRefresher(session, services.RefresherOptions{
		Interval:    cfg.RefreshInterval,
		Symbol:      cfg.TokenSymbol,
		RelayerMode: cfg.RelayerMode,
		Publisher:   hub,
		StatsStore:  statsStore,
	})
	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("start refresher: %w", err)
	}

	srv := server.New(server.Config{
		ListenAddr: cfg.ListenAddr,
		PageSize:   cfg.PageSize,
	}, refresher, session, hub, prefsStore)

	errCh := make(chan error, 1)
	if cfg.ListenAddr != "" {
		go func() {
			errCh <- srv.Start()
		}()
	}

	manager := shutdown.NewManager()
	manager.OnShutdown(func(shutdownCtx context.Context) {
		refresher.Stop()
	})
	manager.OnShutdown(func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("[main] server shutdown: %v", err)
		}
	})
	manager.OnShutdown(func(context.Context) {
		session.Client().Close()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infof("[main] received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			logger.Errorf("[main] server failed: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	manager.Shutdown(shutdownCtx)
	return nil
}
