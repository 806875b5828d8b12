// Copyright 2025 Poiesic Systems
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


package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/poiesic/intellicourse/agent"
	"github.com/poiesic/intellicourse/core"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "intellicourse"

// Metrics records HTTP and pipeline metrics. It implements agent.Observer.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	queriesTotal    *prometheus.CounterVec
	fallbacksTotal  prometheus.Counter
	stageDuration   *prometheus.HistogramVec
	stageFailures   *prometheus.CounterVec
}

var _ agent.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Answered queries by route and source tool",
			},
			[]string{"route", "source_tool"},
		),
		fallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "route_fallbacks_total",
				Help:      "Queries routed by the keyword fallback",
			},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_failures_total",
				Help:      "Failed pipeline stages",
			},
			[]string{"stage"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.requestsTotal, m.requestDuration, m.queriesTotal,
		m.fallbacksTotal, m.stageDuration, m.stageFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Routed implements agent.Observer.
func (m *Metrics) Routed(decision agent.Decision) {
	if decision.Fallback {
		m.fallbacksTotal.Inc()
	}
}

// StageFinished implements agent.Observer.
func (m *Metrics) StageFinished(stage agent.Stage, elapsed time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage.String()).Observe(elapsed.Seconds())
	if err != nil {
		m.stageFailures.WithLabelValues(stage.String()).Inc()
	}
}

// Completed implements agent.Observer.
func (m *Metrics) Completed(result *core.ConversationResult) {
	m.queriesTotal.WithLabelValues(result.Route.String(), result.SourceTool.String()).Inc()
}

// Middleware records request counts and latencies labeled by route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}
		m.requestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
