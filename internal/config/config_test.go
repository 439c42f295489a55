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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
kafka:
  brokers: ["localhost:9092"]
scan:
  topic: orders
  start_offset: 0
  end_offset: 100
columns:
  - name: _partition_offset
    source: internal
  - name: amount
    type: double
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source != "kafka" {
		t.Fatalf("default source: %s", cfg.Source)
	}
	if cfg.Kafka.ClientID != "kafquery" {
		t.Fatalf("default client id: %s", cfg.Kafka.ClientID)
	}
	if cfg.Key.Format != "raw" || cfg.Value.Format != "json" {
		t.Fatalf("default formats: %s/%s", cfg.Key.Format, cfg.Value.Format)
	}
	if cfg.MetricsListen != ":9094" {
		t.Fatalf("default metrics listen: %s", cfg.MetricsListen)
	}
	if cfg.Columns[1].Source != "value" {
		t.Fatalf("default column source: %s", cfg.Columns[1].Source)
	}
}

func TestLoadSegmentSource(t *testing.T) {
	path := writeTempConfig(t, `
source: segment
s3:
  bucket: kafscale-segments
  region: us-east-1
  cache_bytes: 1048576
scan:
  topic: orders
  partition: 2
  start_offset: 10
  end_offset: 20
columns:
  - name: _message
    source: internal
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.S3.Namespace != "kafscale" {
		t.Fatalf("default namespace: %s", cfg.S3.Namespace)
	}
	if cfg.S3.CacheBytes != 1048576 {
		t.Fatalf("cache bytes: %d", cfg.S3.CacheBytes)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing brokers",
			yaml:    "scan:\n  topic: t\n  end_offset: 1\ncolumns:\n  - name: _key\n    source: internal\n",
			wantErr: "kafka.brokers",
		},
		{
			name:    "unknown source",
			yaml:    "source: carrier-pigeon\nscan:\n  topic: t\ncolumns:\n  - name: _key\n    source: internal\n",
			wantErr: "source",
		},
		{
			name:    "missing bucket",
			yaml:    "source: segment\ns3:\n  region: us-east-1\nscan:\n  topic: t\ncolumns:\n  - name: _key\n    source: internal\n",
			wantErr: "s3.bucket",
		},
		{
			name:    "missing topic",
			yaml:    "kafka:\n  brokers: [\"b:9092\"]\ncolumns:\n  - name: _key\n    source: internal\n",
			wantErr: "scan.topic",
		},
		{
			name:    "inverted range",
			yaml:    "kafka:\n  brokers: [\"b:9092\"]\nscan:\n  topic: t\n  start_offset: 10\n  end_offset: 5\ncolumns:\n  - name: _key\n    source: internal\n",
			wantErr: "end_offset",
		},
		{
			name:    "negative partition",
			yaml:    "kafka:\n  brokers: [\"b:9092\"]\nscan:\n  topic: t\n  partition: -1\n  end_offset: 1\ncolumns:\n  - name: _key\n    source: internal\n",
			wantErr: "scan.partition",
		},
		{
			name:    "bad value format",
			yaml:    "kafka:\n  brokers: [\"b:9092\"]\nvalue:\n  format: avro\nscan:\n  topic: t\n  end_offset: 1\ncolumns:\n  - name: _key\n    source: internal\n",
			wantErr: "value.format",
		},
		{
			name:    "no columns",
			yaml:    "kafka:\n  brokers: [\"b:9092\"]\nscan:\n  topic: t\n  end_offset: 1\n",
			wantErr: "columns",
		},
		{
			name:    "column without type",
			yaml:    "kafka:\n  brokers: [\"b:9092\"]\nscan:\n  topic: t\n  end_offset: 1\ncolumns:\n  - name: amount\n    source: value\n",
			wantErr: "columns[0].type",
		},
		{
			name:    "bad column type",
			yaml:    "kafka:\n  brokers: [\"b:9092\"]\nscan:\n  topic: t\n  end_offset: 1\ncolumns:\n  - name: amount\n    type: decimal\n",
			wantErr: "columns[0].type",
		},
		{
			name:    "bad column source",
			yaml:    "kafka:\n  brokers: [\"b:9092\"]\nscan:\n  topic: t\n  end_offset: 1\ncolumns:\n  - name: amount\n    type: double\n    source: envelope\n",
			wantErr: "columns[0].source",
		},
	}
	for _, tc := range cases {
		path := writeTempConfig(t, tc.yaml)
		_, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
