package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thuthancs/inline/internal/config"
	"github.com/thuthancs/inline/internal/kv"
	"github.com/thuthancs/inline/internal/log"
	"github.com/thuthancs/inline/internal/server"
	"github.com/thuthancs/inline/internal/session"
)

var (
	addrFlag    string
	envFile     string
	configFile  string
	debugFlag   int
	versionInfo = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "inline-server",
	Short:   "API server for the Inline web clipper",
	Long:    "Serves the OAuth flow, session store and Notion save API the Inline browser extension talks to.",
	Version: versionInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides PORT / PORT_ADDR)")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.Flags().StringVar(&configFile, "config", "", "YAML config file overlaid on the environment")
	rootCmd.Flags().IntVar(&debugFlag, "debug", -1, "log verbosity 0..4 (overrides INLINE_DEBUG)")
}

func serve() error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	cfg := config.Load()
	if configFile != "" {
		if err := cfg.MergeFile(configFile); err != nil {
			return err
		}
	}
	if addrFlag != "" {
		cfg.ListenAddr = addrFlag
	}
	if debugFlag >= 0 {
		cfg.Debug = debugFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.SetLevel(log.LevelFromInt(cfg.Debug))

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	sessions, err := session.NewStore(store, cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}

	if !cfg.OAuthConfigured() {
		log.Log("NOTION_CLIENT_ID or REDIRECT_URI not set, OAuth routes will refuse requests\n")
	}

	srv := server.New(cfg, sessions)
	log.Log("listening on %s\n", cfg.ListenAddr)
	return srv.Run()
}

func openStore(cfg *config.Config) (kv.Store, error) {
	if cfg.RedisURL == "" {
		log.Log("REDIS_URL not set, using in-memory session store\n")
		return kv.NewMemoryStore(), nil
	}
	store, err := kv.NewRedisStore(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
