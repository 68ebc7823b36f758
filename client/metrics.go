// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"time"

	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opSplit       = "split"
	opReconstruct = "reconstruct"
)

// Metrics counts operations on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Operations *prometheus.CounterVec
	Bytes      *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cfshare",
				Name:      "operations_total",
				Help:      "Split and reconstruct calls by result.",
			},
			[]string{"op", "result"},
		),
		Bytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cfshare",
				Name:      "bytes_total",
				Help:      "Bytes encrypted by split or restored by reconstruct.",
			},
			[]string{"op"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cfshare",
				Name:      "operation_duration_seconds",
				Help:      "Duration of split and reconstruct calls.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"op"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observe(op string, n int64, err error, start time.Time) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = cferrors.KindOf(err).String()
	}
	m.Operations.WithLabelValues(op, result).Inc()
	if err == nil {
		m.Bytes.WithLabelValues(op).Add(float64(n))
	}
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
