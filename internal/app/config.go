package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/corey/patmatch/internal/ports"
)

// Config wires the daemon. CLI flags populate it directly; serve can also
// load it from a YAML file, with flags taking precedence.
type Config struct {
	PatternFile  string `yaml:"pattern_file"`
	StopwordFile string `yaml:"stopword_file"`

	Options ports.MatchOptions `yaml:"options"`

	TCPPort    int    `yaml:"tcp_port"`    // > 0 enables the TCP listener
	UnixSocket string `yaml:"unix_socket"` // non-empty enables the Unix listener

	HTTPEnabled bool `yaml:"http_enabled"`
	HTTPPort    int  `yaml:"http_port"` // 0 picks a free port

	DBPath string `yaml:"db_path"` // non-empty enables stats persistence
	Watch  bool   `yaml:"watch"`   // rebuild on pattern-file changes

	CacheSize int `yaml:"cache_size"` // single-query LRU entries; 0 disables

	Workers int `yaml:"workers"` // batch parallelism; 0 = GOMAXPROCS
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
