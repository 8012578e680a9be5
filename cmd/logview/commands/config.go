package commands

import (
	"fmt"
	"os"

	"github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/logtime"
	"github.com/logview-io/logview-go/pkg/transport"
	"gopkg.in/yaml.v3"
)

// ConnectConfig holds viewer settings. It can be loaded from a YAML file
// and overridden by flags.
//
//	url: tcp://buildhost:9876
//	level: info
//	source: app/net
//	interactive: true
//	ping_interval: 30000000000
type ConnectConfig struct {
	URL         string `yaml:"url"`
	Recording   string `yaml:"recording,omitempty"`
	Source      string `yaml:"source,omitempty"`
	Level       string `yaml:"level,omitempty"`
	Interactive bool   `yaml:"interactive,omitempty"`

	// Limit stops the viewer after this many matching events. Zero means no limit.
	Limit int `yaml:"limit,omitempty"`

	// PingInterval overrides the keep-alive ping interval in nanoseconds.
	// Negative disables keep-alive.
	PingInterval *logtime.Duration `yaml:"ping_interval,omitempty"`
}

// LoadConnectConfig reads a YAML viewer configuration.
func LoadConnectConfig(path string) (ConnectConfig, error) {
	var cfg ConnectConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Filter builds the event filter the viewer applies.
func (c ConnectConfig) Filter() (log.Filter, error) {
	return BuildFilter(c.Recording, c.Source, c.Level, "", "")
}

func (c ConnectConfig) clientConfig() transport.ClientConfig {
	var cc transport.ClientConfig
	if c.PingInterval != nil {
		cc.KeepAlive.PingInterval = c.PingInterval.Std()
	}
	return cc
}
