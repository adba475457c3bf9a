package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"localshare/crypto"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk node configuration. Missing files are created with
// defaults so a bare `localshared` starts a working development node.
type Config struct {
	RPCAddress        string `toml:"RPCAddress"`
	RPCAuthToken      string `toml:"RPCAuthToken"`
	DataDir           string `toml:"DataDir"`
	NetworkName       string `toml:"NetworkName"`
	AdminKeystorePath string `toml:"AdminKeystorePath"`

	// GenesisAdmin and PaymentMint seed the protocol configuration on first
	// boot. GenesisAdmin defaults to the admin keystore's own address.
	GenesisAdmin string `toml:"GenesisAdmin"`
	PaymentMint  string `toml:"PaymentMint"`

	// DevFaucetAmount, when nonzero, credits that much native currency to
	// every address the faucet RPC is asked about. Development only.
	DevFaucetAmount uint64 `toml:"DevFaucetAmount"`
}

// Load loads the configuration from the given path, creating a default file
// (and admin keystore) when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := ensureKeystore(path, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./localshare-data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "localshare-local"
	}
}

func validate(cfg *Config) error {
	if addr := strings.TrimSpace(cfg.GenesisAdmin); addr != "" {
		if _, err := crypto.DecodeAddress(addr); err != nil {
			return fmt.Errorf("config: invalid GenesisAdmin: %w", err)
		}
	}
	if addr := strings.TrimSpace(cfg.PaymentMint); addr != "" {
		if _, err := crypto.DecodeAddress(addr); err != nil {
			return fmt.Errorf("config: invalid PaymentMint: %w", err)
		}
	}
	return nil
}

func ensureKeystore(configPath string, cfg *Config) error {
	keystorePath := cfg.AdminKeystorePath
	if keystorePath == "" {
		keystorePath = defaultKeystorePath(configPath)
	}

	if _, err := os.Stat(keystorePath); os.IsNotExist(err) {
		key, genErr := crypto.GeneratePrivateKey()
		if genErr != nil {
			return genErr
		}
		if err := crypto.SaveToKeystore(keystorePath, key, ""); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if cfg.AdminKeystorePath != keystorePath {
		cfg.AdminKeystorePath = keystorePath
		return persist(configPath, cfg)
	}
	return nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	keystorePath := defaultKeystorePath(path)
	if err := crypto.SaveToKeystore(keystorePath, key, ""); err != nil {
		return nil, err
	}

	cfg := &Config{
		RPCAddress:        ":8080",
		DataDir:           "./localshare-data",
		NetworkName:       "localshare-local",
		AdminKeystorePath: keystorePath,
		GenesisAdmin:      key.PubKey().Address().String(),
		DevFaucetAmount:   0,
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func defaultKeystorePath(configPath string) string {
	dir := filepath.Dir(configPath)
	if dir == "." || dir == "" {
		dir = ""
	}
	return filepath.Join(dir, "admin.keystore")
}
