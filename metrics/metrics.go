// Package metrics records tool, LLM and graph activity in Prometheus format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smallnest/langlab/graph"
)

const namespace = "langlab"

// Recorder holds the collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	toolCalls   *prometheus.CounterVec
	toolLatency *prometheus.HistogramVec

	llmCalls   *prometheus.CounterVec
	llmLatency *prometheus.HistogramVec
	llmTokens  *prometheus.CounterVec

	nodeRuns *prometheus.CounterVec
}

// Config configures the Recorder.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// New creates a Recorder and registers its collectors.
func New(cfg Config) *Recorder {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Recorder{registry: registry}

	r.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)
	r.toolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "tool_latency_seconds",
			Help:      "Tool call latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"tool"},
	)
	r.llmCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)
	r.llmLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "latency_seconds",
			Help:      "LLM request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"provider", "model"},
	)
	r.llmTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Total LLM tokens reported by providers",
		},
		[]string{"model", "token_type"},
	)
	r.nodeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "node_runs_total",
			Help:      "Total number of graph node executions",
		},
		[]string{"graph", "node", "status"},
	)

	registry.MustRegister(r.toolCalls, r.toolLatency, r.llmCalls, r.llmLatency, r.llmTokens, r.nodeRuns)
	return r
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordToolCall records one tool invocation.
func (r *Recorder) RecordToolCall(tool string, latency time.Duration, err error) {
	if r == nil {
		return
	}
	r.toolCalls.WithLabelValues(tool, status(err)).Inc()
	r.toolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordLLMCall records one model request.
func (r *Recorder) RecordLLMCall(provider, model string, latency time.Duration, err error) {
	if r == nil {
		return
	}
	r.llmCalls.WithLabelValues(provider, model, status(err)).Inc()
	r.llmLatency.WithLabelValues(provider, model).Observe(latency.Seconds())
}

// RecordLLMTokens adds token usage of the given type ("prompt", "completion").
func (r *Recorder) RecordLLMTokens(model, tokenType string, count int) {
	if r == nil || count <= 0 {
		return
	}
	r.llmTokens.WithLabelValues(model, tokenType).Add(float64(count))
}

// RecordNodeRun records one graph node execution.
func (r *Recorder) RecordNodeRun(graphName, node string, err error) {
	if r == nil {
		return
	}
	r.nodeRuns.WithLabelValues(graphName, node, status(err)).Inc()
}

// NodeListener returns a graph listener that counts node runs of graphName.
func (r *Recorder) NodeListener(graphName string) graph.NodeListener {
	return graph.NodeListenerFunc(func(_ context.Context, event graph.NodeEvent, node string, _ any, err error) {
		switch event {
		case graph.NodeEventComplete:
			r.RecordNodeRun(graphName, node, nil)
		case graph.NodeEventError:
			r.RecordNodeRun(graphName, node, err)
		}
	})
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
