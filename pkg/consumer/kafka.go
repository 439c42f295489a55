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

package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaFactory creates consumers backed by a live Kafka (or Kafscale)
// broker set.
type KafkaFactory struct {
	Brokers  []string
	ClientID string
}

func (f *KafkaFactory) Create(ctx context.Context) (Consumer, error) {
	if len(f.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer: no brokers configured")
	}
	return &kafkaConsumer{
		brokers:  append([]string(nil), f.Brokers...),
		clientID: f.ClientID,
	}, nil
}

// kafkaConsumer defers building the kgo client until the first Poll so
// that Assign and Seek can fix the start offset beforehand.
type kafkaConsumer struct {
	brokers  []string
	clientID string

	topic     string
	partition int32
	position  int64

	client *kgo.Client
	closed bool
}

func (c *kafkaConsumer) Assign(topic string, partition int32) {
	c.topic = topic
	c.partition = partition
}

// Seek records the start offset. A client built by an earlier Poll is
// anchored at the old offset, so it is torn down and rebuilt lazily at
// the new position.
func (c *kafkaConsumer) Seek(offset int64) {
	c.position = offset
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

func (c *kafkaConsumer) Position() int64 {
	return c.position
}

func (c *kafkaConsumer) Poll(ctx context.Context, timeout time.Duration) ([]Message, error) {
	if c.closed {
		return nil, fmt.Errorf("kafka consumer: poll after close")
	}
	if err := c.ensureClient(); err != nil {
		return nil, err
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	fetches := c.client.PollFetches(pollCtx)
	if errs := fetches.Errors(); len(errs) > 0 {
		if !allTransientFetchErrors(errs) {
			return nil, fmt.Errorf("kafka consumer: fetch %s[%d]: %+v", c.topic, c.partition, errs)
		}
	}

	var batch []Message
	fetches.EachRecord(func(record *kgo.Record) {
		batch = append(batch, messageFromRecord(record))
	})
	if len(batch) > 0 {
		c.position = batch[len(batch)-1].Offset + 1
	}
	return batch, nil
}

func (c *kafkaConsumer) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	return nil
}

func (c *kafkaConsumer) ensureClient() error {
	if c.client != nil {
		return nil
	}
	if c.topic == "" {
		return fmt.Errorf("kafka consumer: no partition assigned")
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.brokers...),
		kgo.ConsumePartitions(map[string]map[int32]kgo.Offset{
			c.topic: {c.partition: kgo.NewOffset().At(c.position)},
		}),
	}
	if c.clientID != "" {
		opts = append(opts, kgo.ClientID(c.clientID))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("kafka consumer: create client: %w", err)
	}
	c.client = client
	return nil
}

func messageFromRecord(record *kgo.Record) Message {
	msg := Message{
		Offset:      record.Offset,
		Partition:   record.Partition,
		TimestampMs: record.Timestamp.UnixMilli(),
		Key:         record.Key,
		Value:       record.Value,
	}
	if len(record.Headers) > 0 {
		msg.Headers = make([]Header, len(record.Headers))
		for i, h := range record.Headers {
			msg.Headers[i] = Header{Key: h.Key, Value: h.Value}
		}
	}
	return msg
}

// A poll that runs out its deadline before the broker has records is
// normal control flow, not a failure.
func allTransientFetchErrors(errs []kgo.FetchError) bool {
	for _, fetchErr := range errs {
		err := fetchErr.Err
		if err == nil {
			continue
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			continue
		}
		return false
	}
	return true
}
