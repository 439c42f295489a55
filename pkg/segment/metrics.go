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

package segment

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "kafquery_segment"

var (
	storeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_requests_total",
			Help:      "Total object store requests by operation.",
		},
		[]string{"op"},
	)
	storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_errors_total",
			Help:      "Total object store errors by operation.",
		},
		[]string{"op"},
	)
	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "store_duration_ms",
			Help:      "Object store request latency in milliseconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	storeBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_bytes_total",
			Help:      "Total bytes downloaded from the object store.",
		},
	)
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_total",
			Help:      "Segment cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		storeRequests,
		storeErrors,
		storeDuration,
		storeBytesTotal,
		cacheHits,
	)
}

func observeStoreOp(op string, start time.Time, err error) {
	storeRequests.WithLabelValues(op).Inc()
	storeDuration.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		storeErrors.WithLabelValues(op).Inc()
	}
}
