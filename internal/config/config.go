// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config represents the application configuration.
type Config struct {
	APIKey    string `json:"api_key"`
	APIURL    string `json:"api_url,omitempty"`
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens,omitempty"`
	Host      string `json:"host,omitempty"`
	Port      int    `json:"port,omitempty"`
	LogLevel  string `json:"log_level,omitempty"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		APIURL:    "https://api.openai.com/v1",
		Model:     "gpt-4o-mini",
		MaxTokens: 1000,
		Host:      "localhost",
		Port:      8005,
		LogLevel:  "info",
	}
}

// LoadConfig loads configuration from a JSON file and applies env
// overrides. A missing file is not an error; a missing API key is not an
// error either, the LLM forwarder fails explicitly when constructed
// without one.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", filepath, err)
		}
	}

	// Env overrides (apply regardless of whether the config file exists).
	// OPENAI_API_KEY wins; ANTHROPIC_API_KEY is accepted for OpenAI
	// compatible gateways fronting Anthropic models.
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		config.APIKey = val
	} else if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
		config.APIKey = val
	}
	if val := os.Getenv("OPENAI_API_URL"); val != "" {
		config.APIURL = val
	}
	if val := os.Getenv("BRIDGE_HOST"); val != "" {
		config.Host = val
	}
	if val := os.Getenv("BRIDGE_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid BRIDGE_PORT %q", val)
		}
		config.Port = port
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// Defaults for any values blanked by the file.
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.APIURL == "" {
		config.APIURL = "https://api.openai.com/v1"
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port <= 0 {
		config.Port = 8005
	}

	return config, nil
}

// Addr returns the host:port listen address for the HTTP transport.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
