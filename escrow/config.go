package escrow

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/payflow/escrow/escrow/database"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig         `toml:"log"`
	DB     database.DBConfig `toml:"db"`
	Spaces SpacesConfig      `toml:"spaces"`
	Events EventsConfig      `toml:"events"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

// SpacesConfig configures the S3-compatible object storage that holds
// shipment receipts.
type SpacesConfig struct {
	Key         string `toml:"key"`
	Secret      string `toml:"secret"`
	Region      string `toml:"region"`
	Bucket      string `toml:"bucket"`
	ReceiptRoot string `toml:"receipt_root"`
}

// EventsConfig configures the event sink. An empty URI selects the log sink.
type EventsConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}
