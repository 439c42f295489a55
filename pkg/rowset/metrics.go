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

package rowset

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "kafquery"

var (
	rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_total",
			Help:      "Total rows emitted per topic.",
		},
		[]string{"topic"},
	)
	completedBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "completed_bytes_total",
			Help:      "Total serialized key+value bytes consumed per topic.",
		},
		[]string{"topic"},
	)
	corruptTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "corrupt_total",
			Help:      "Total rows with an undecodable key or value payload.",
		},
		[]string{"topic", "side"},
	)
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "polls_total",
			Help:      "Total consumer polls by outcome.",
		},
		[]string{"topic", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		rowsTotal,
		completedBytesTotal,
		corruptTotal,
		pollsTotal,
	)
}
