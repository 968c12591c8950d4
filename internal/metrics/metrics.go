// Copyright 2025 Code Weaver Project
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

// Package metrics exposes Prometheus instrumentation for the generation
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. All methods are
// nil-safe so callers can pass a nil *Metrics to disable instrumentation.
type Metrics struct {
	modelAttempts      *prometheus.CounterVec
	fallbackTotal      prometheus.Counter
	deployTotal        *prometheus.CounterVec
	generationDuration prometheus.Histogram
}

// New registers the pipeline collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		modelAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "code_weaver",
			Name:      "model_attempts_total",
			Help:      "Model invocation attempts by model and outcome.",
		}, []string{"model", "outcome"}),
		fallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "code_weaver",
			Name:      "fallback_generations_total",
			Help:      "Generations served by the deterministic fallback.",
		}),
		deployTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "code_weaver",
			Name:      "deployments_total",
			Help:      "Deployment attempts by outcome.",
		}, []string{"outcome"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "code_weaver",
			Name:      "generation_duration_seconds",
			Help:      "End to end generation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	reg.MustRegister(m.modelAttempts, m.fallbackTotal, m.deployTotal, m.generationDuration)
	return m
}

func (m *Metrics) RecordAttempt(model, outcome string) {
	if m == nil {
		return
	}
	m.modelAttempts.WithLabelValues(model, outcome).Inc()
}

func (m *Metrics) RecordFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
}

func (m *Metrics) RecordDeploy(outcome string) {
	if m == nil {
		return
	}
	m.deployTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveGeneration(seconds float64) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(seconds)
}
