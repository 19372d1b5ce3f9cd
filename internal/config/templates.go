package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Luxury Tycoon Configuration

[economy]
# Balances of a fresh session
starting_primary = 10000.0
starting_premium = 25.0
# Primary credited by the daily reward
daily_reward = 1000.0
# Share of an item's primary price needed in the wallet to unlock it
unlock_threshold_fraction = 0.5
# Primary received per premium unit converted
premium_to_primary_rate = 100.0
# Prices kept per instrument
history_length = 30
# Optional YAML catalog replacing the built-in one
catalog_path = ""
# Random seed for prices and spins (0 = time based)
seed = 0

[scheduler]
enabled = true
# Interval between price ticks (e.g., "2s", "500ms")
tick_interval = "2s"

[store]
# Record every action in the SQLite journal
enabled = true
# Defaults to journal.db in the config directory
# path = ""

[server]
addr = "127.0.0.1:8080"
read_timeout = "10s"
write_timeout = "10s"
# Mutating requests per second, shared by HTTP clients and counted per
# websocket connection (0 = unlimited)
action_rate = 20.0
action_burst = 40

[logging]
# Log level: debug, info, warn, error
level = "info"
# Also write rotating log files
file = true
max_size_mb = 100
max_backups = 5
max_age_days = 30

# Daily spin wheel. Weights are relative.
[[spin.prizes]]
currency = "primary"
amount = 250.0
weight = 30

[[spin.prizes]]
currency = "primary"
amount = 500.0
weight = 25

[[spin.prizes]]
currency = "primary"
amount = 1000.0
weight = 15

[[spin.prizes]]
currency = "primary"
amount = 5000.0
weight = 5

[[spin.prizes]]
currency = "premium"
amount = 5.0
weight = 15

[[spin.prizes]]
currency = "premium"
amount = 10.0
weight = 8

[[spin.prizes]]
currency = "premium"
amount = 50.0
weight = 2
`

// WriteTemplate writes the commented default config into configDir unless
// a config file already exists there.
func WriteTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, FileName+".toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
