// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines the scan tool configuration schema.
type Config struct {
	Source        string       `yaml:"source"`
	Kafka         KafkaConfig  `yaml:"kafka"`
	S3            S3Config     `yaml:"s3"`
	Scan          ScanConfig   `yaml:"scan"`
	Key           FormatConfig `yaml:"key"`
	Value         FormatConfig `yaml:"value"`
	Columns       []Column     `yaml:"columns"`
	MetricsListen string       `yaml:"metrics_listen"`
}

type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"client_id"`
}

type S3Config struct {
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	PathStyle  bool   `yaml:"path_style"`
	Namespace  string `yaml:"namespace"`
	CacheBytes int    `yaml:"cache_bytes"`
}

type ScanConfig struct {
	Topic       string `yaml:"topic"`
	Partition   int32  `yaml:"partition"`
	StartOffset int64  `yaml:"start_offset"`
	EndOffset   int64  `yaml:"end_offset"`
}

type FormatConfig struct {
	Format string `yaml:"format"`
}

type Column struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Source string `yaml:"source"`
}

// Load reads and validates the configuration file, applying defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Source == "" {
		cfg.Source = "kafka"
	}
	switch cfg.Source {
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 {
			return Config{}, fmt.Errorf("kafka.brokers is required for source=kafka")
		}
	case "segment":
		if cfg.S3.Bucket == "" {
			return Config{}, fmt.Errorf("s3.bucket is required for source=segment")
		}
		if cfg.S3.Region == "" {
			return Config{}, fmt.Errorf("s3.region is required for source=segment")
		}
	default:
		return Config{}, fmt.Errorf("source %q is not supported", cfg.Source)
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = "kafquery"
	}
	if cfg.S3.Namespace == "" {
		cfg.S3.Namespace = "kafscale"
	}

	if cfg.Scan.Topic == "" {
		return Config{}, fmt.Errorf("scan.topic is required")
	}
	if cfg.Scan.Partition < 0 {
		return Config{}, fmt.Errorf("scan.partition must not be negative")
	}
	if cfg.Scan.EndOffset < cfg.Scan.StartOffset {
		return Config{}, fmt.Errorf("scan.end_offset %d is before scan.start_offset %d", cfg.Scan.EndOffset, cfg.Scan.StartOffset)
	}

	if cfg.Key.Format == "" {
		cfg.Key.Format = "raw"
	}
	if cfg.Value.Format == "" {
		cfg.Value.Format = "json"
	}
	if !isSupportedFormat(cfg.Key.Format) {
		return Config{}, fmt.Errorf("key.format %q is not supported", cfg.Key.Format)
	}
	if !isSupportedFormat(cfg.Value.Format) {
		return Config{}, fmt.Errorf("value.format %q is not supported", cfg.Value.Format)
	}

	if len(cfg.Columns) == 0 {
		return Config{}, fmt.Errorf("columns is required")
	}
	for i, col := range cfg.Columns {
		if col.Name == "" {
			return Config{}, fmt.Errorf("columns[%d].name is required", i)
		}
		if col.Source == "" {
			col.Source = "value"
		}
		switch col.Source {
		case "internal":
			// Type comes from the field catalog.
		case "key", "value":
			if col.Type == "" {
				return Config{}, fmt.Errorf("columns[%d].type is required for source=%s", i, col.Source)
			}
			if !isSupportedColumnType(col.Type) {
				return Config{}, fmt.Errorf("columns[%d].type %q is not supported", i, col.Type)
			}
		default:
			return Config{}, fmt.Errorf("columns[%d].source %q is not supported", i, col.Source)
		}
		cfg.Columns[i] = col
	}

	if cfg.MetricsListen == "" {
		cfg.MetricsListen = ":9094"
	}

	return cfg, nil
}

func isSupportedFormat(value string) bool {
	switch strings.ToLower(value) {
	case "raw", "json":
		return true
	default:
		return false
	}
}

func isSupportedColumnType(value string) bool {
	switch strings.ToLower(value) {
	case "boolean", "bigint", "double", "varchar", "varbinary", "timestamp":
		return true
	default:
		return false
	}
}
