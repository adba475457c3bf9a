package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"localshare/config"
	"localshare/core"
	"localshare/crypto"
	"localshare/observability/logging"
	"localshare/rpc"
	"localshare/storage"
)

const (
	envName     = "LSH_ENV"
	rpcTokenEnv = "LSH_RPC_TOKEN"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envName))
	logger := logging.Setup("localshared", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node, err := core.NewNode(db)
	if err != nil {
		panic(fmt.Sprintf("Failed to create node: %v", err))
	}

	if err := bootstrapConfig(node, cfg, logger); err != nil {
		logger.Error("Failed to bootstrap protocol config", slog.Any("error", err))
		os.Exit(1)
	}

	authToken := strings.TrimSpace(cfg.RPCAuthToken)
	if authToken == "" {
		authToken = strings.TrimSpace(os.Getenv(rpcTokenEnv))
	}
	if authToken == "" {
		logger.Warn("RPC authentication disabled; set RPCAuthToken for production use")
	}

	server := rpc.NewServer(node, authToken)
	if cfg.DevFaucetAmount > 0 {
		logger.Warn("dev faucet enabled", slog.Uint64("amount", cfg.DevFaucetAmount))
		server.EnableDevFaucet(cfg.DevFaucetAmount)
	}

	logger.Info("node ready", slog.String("network", cfg.NetworkName), slog.String("rpc", cfg.RPCAddress))
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// bootstrapConfig initialises the protocol configuration on first boot when
// the config file names a genesis admin and payment mint. An already
// initialised store is left untouched.
func bootstrapConfig(node *core.Node, cfg *config.Config, logger *slog.Logger) error {
	_, ok, err := node.EquityConfig()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	adminStr := strings.TrimSpace(cfg.GenesisAdmin)
	mintStr := strings.TrimSpace(cfg.PaymentMint)
	if adminStr == "" || mintStr == "" {
		logger.Info("protocol config not initialised; waiting for equity_initConfig")
		return nil
	}

	admin, err := crypto.DecodeAddress(adminStr)
	if err != nil {
		return fmt.Errorf("invalid GenesisAdmin: %w", err)
	}
	mint, err := crypto.DecodeAddress(mintStr)
	if err != nil {
		return fmt.Errorf("invalid PaymentMint: %w", err)
	}

	if _, err := node.EquityInitConfig(admin.Array(), mint.Array()); err != nil {
		return err
	}
	logger.Info("protocol config initialised", slog.String("admin", adminStr), slog.String("paymentMint", mintStr))
	return nil
}
