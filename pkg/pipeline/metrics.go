package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage outcomes recorded in metrics.
const (
	outcomeOK      = "ok"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

// Run outcomes recorded in metrics.
const (
	runAnswered      = "answered"       // every stage succeeded
	runErrorAnswered = "error_answered" // a stage failed, the answer explains it
	runFailed        = "failed"         // the answer stage itself failed
)

var (
	stageRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_pipeline_stage_runs_total",
			Help: "Pipeline stage executions by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)
	stageLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlchat_pipeline_stage_latency_ms",
			Help:    "Pipeline stage latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"stage"},
	)
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_pipeline_runs_total",
			Help: "Completed pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)
	llmTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_llm_tokens_total",
			Help: "LLM tokens consumed by stage and kind (prompt or completion).",
		},
		[]string{"stage", "kind"},
	)
)

func init() {
	prometheus.MustRegister(
		stageRunsTotal,
		stageLatencyMs,
		runsTotal,
		llmTokensTotal,
	)
}

func observeStage(stage StageName, outcome string, elapsed time.Duration) {
	stageRunsTotal.WithLabelValues(string(stage), outcome).Inc()
	if outcome != outcomeSkipped {
		stageLatencyMs.WithLabelValues(string(stage)).Observe(float64(elapsed.Milliseconds()))
	}
}

func observeRun(outcome string) {
	runsTotal.WithLabelValues(outcome).Inc()
}

func observeTokens(stage StageName, prompt, completion int) {
	if prompt > 0 {
		llmTokensTotal.WithLabelValues(string(stage), "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		llmTokensTotal.WithLabelValues(string(stage), "completion").Add(float64(completion))
	}
}
