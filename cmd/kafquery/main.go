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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/novatechflow/kafquery/internal/config"
	"github.com/novatechflow/kafquery/internal/server"
	"github.com/novatechflow/kafquery/pkg/consumer"
	"github.com/novatechflow/kafquery/pkg/rowdecoder"
	"github.com/novatechflow/kafquery/pkg/rowset"
	"github.com/novatechflow/kafquery/pkg/segment"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "Path to scan config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Start(ctx, cfg.MetricsListen, logger)

	if err := runScan(ctx, cfg, logger); err != nil {
		log.Fatalf("scan failed: %v", err)
	}
}

func runScan(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	columns, keyColumns, valueColumns, err := buildColumns(cfg.Columns)
	if err != nil {
		return err
	}

	factory, err := buildFactory(ctx, cfg)
	if err != nil {
		return err
	}

	split := rowset.Split{
		Topic:     cfg.Scan.Topic,
		Partition: cfg.Scan.Partition,
		Range:     rowset.OffsetRange{Begin: cfg.Scan.StartOffset, End: cfg.Scan.EndOffset},
	}
	set, err := rowset.New(split, factory,
		columns,
		buildDecoder(cfg.Key.Format, keyColumns),
		buildDecoder(cfg.Value.Format, valueColumns))
	if err != nil {
		return err
	}

	cursor, err := set.OpenCursor(ctx)
	if err != nil {
		return err
	}
	defer cursor.Close()

	out := json.NewEncoder(os.Stdout)
	rows := 0
	for {
		ok, err := cursor.Advance(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		row, err := encodeRow(cursor, columns)
		if err != nil {
			return err
		}
		if err := out.Encode(row); err != nil {
			return err
		}
		rows++
	}

	logger.Info("scan complete",
		"topic", cfg.Scan.Topic,
		"partition", cfg.Scan.Partition,
		"rows", rows,
		"completed_bytes", cursor.CompletedBytes())
	return nil
}

func buildColumns(specs []config.Column) (all, key, value []*rowset.Column, err error) {
	for _, spec := range specs {
		switch spec.Source {
		case "internal":
			field, lookupErr := rowset.LookupInternalField(spec.Name)
			if lookupErr != nil {
				return nil, nil, nil, lookupErr
			}
			col := &rowset.Column{
				Name:     spec.Name,
				Type:     rowset.InternalFieldType(field),
				Internal: true,
			}
			all = append(all, col)
		case "key":
			col, parseErr := decodedColumn(spec)
			if parseErr != nil {
				return nil, nil, nil, parseErr
			}
			all = append(all, col)
			key = append(key, col)
		case "value":
			col, parseErr := decodedColumn(spec)
			if parseErr != nil {
				return nil, nil, nil, parseErr
			}
			all = append(all, col)
			value = append(value, col)
		}
	}
	return all, key, value, nil
}

func decodedColumn(spec config.Column) (*rowset.Column, error) {
	typ, err := parseType(spec.Type)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", spec.Name, err)
	}
	return &rowset.Column{Name: spec.Name, Type: typ}, nil
}

func parseType(value string) (rowset.Type, error) {
	switch strings.ToLower(value) {
	case "boolean":
		return rowset.TypeBoolean, nil
	case "bigint":
		return rowset.TypeBigint, nil
	case "double":
		return rowset.TypeDouble, nil
	case "varchar":
		return rowset.TypeVarchar, nil
	case "varbinary":
		return rowset.TypeVarbinary, nil
	case "timestamp":
		return rowset.TypeTimestamp, nil
	default:
		return 0, fmt.Errorf("unsupported type %q", value)
	}
}

func buildDecoder(format string, columns []*rowset.Column) rowset.RowDecoder {
	if strings.EqualFold(format, "json") {
		return rowdecoder.NewJSON(columns)
	}
	return rowdecoder.NewRaw(columns)
}

func buildFactory(ctx context.Context, cfg config.Config) (consumer.Factory, error) {
	switch cfg.Source {
	case "kafka":
		return &consumer.KafkaFactory{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
		}, nil
	case "segment":
		store, err := segment.NewS3Store(ctx, segment.S3Config{
			Bucket:         cfg.S3.Bucket,
			Region:         cfg.S3.Region,
			Endpoint:       cfg.S3.Endpoint,
			ForcePathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		factory := &segment.StoreFactory{
			Store:     store,
			Namespace: cfg.S3.Namespace,
		}
		if cfg.S3.CacheBytes > 0 {
			factory.Cache = segment.NewCache(cfg.S3.CacheBytes)
		}
		return factory, nil
	default:
		return nil, fmt.Errorf("source %q is not supported", cfg.Source)
	}
}

func encodeRow(cursor *rowset.Cursor, columns []*rowset.Column) (map[string]any, error) {
	row := make(map[string]any, len(columns))
	for i, col := range columns {
		isNull, err := cursor.IsNull(i)
		if err != nil {
			return nil, err
		}
		if isNull {
			row[col.Name] = nil
			continue
		}
		switch col.Type.Kind() {
		case rowset.KindBool:
			v, err := cursor.GetBoolean(i)
			if err != nil {
				return nil, err
			}
			row[col.Name] = v
		case rowset.KindLong:
			v, err := cursor.GetLong(i)
			if err != nil {
				return nil, err
			}
			row[col.Name] = v
		case rowset.KindDouble:
			v, err := cursor.GetDouble(i)
			if err != nil {
				return nil, err
			}
			row[col.Name] = v
		case rowset.KindBytes:
			v, err := cursor.GetBytes(i)
			if err != nil {
				return nil, err
			}
			row[col.Name] = string(v)
		case rowset.KindMap:
			v, err := cursor.GetObject(i)
			if err != nil {
				return nil, err
			}
			headers := make(map[string][]string, len(v))
			for hKey, hValues := range v {
				for _, hVal := range hValues {
					headers[hKey] = append(headers[hKey], string(hVal))
				}
			}
			row[col.Name] = headers
		}
	}
	return row, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KAFQUERY_LOG_LEVEL"))) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	// Rows go to stdout; keep diagnostics apart.
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With("component", "kafquery")
}
