package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Draft agent 调用延迟（毫秒）
	DraftAgentLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draft_agent_latency_ms",
			Help:    "Story draft agent call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~50s
		},
		[]string{"status"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"operation"},
	)

	// 慢查询耗时（秒）
	SlowQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_slow_query_duration_seconds",
			Help:    "Duration of slow queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~12s
		},
		[]string{"operation"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 活动记录计数
	ActivityLoggedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_logged_total",
			Help: "Total number of activities logged",
		},
		[]string{"kind"}, // kind: content, deepwork, social_reps, workout, sleep, habit, day
	)

	// 每日得分分布
	DailyScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "daily_score",
			Help:    "Distribution of computed daily scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 to 100
		},
	)

	// Dashboard 缓存命中
	DashboardCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_cache_total",
			Help: "Dashboard cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss, error
	)

	// 事件处理计数
	EventProcessedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_processed_total",
			Help: "Total number of domain events processed by the worker",
		},
		[]string{"routing_key", "status"}, // status: success, failed, duplicate, dead_lettered
	)
)

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordDraftAgentLatency 记录 Draft agent 调用延迟
func RecordDraftAgentLatency(status string, duration time.Duration) {
	DraftAgentLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

// IncrementSlowQuery 记录一次慢查询
func IncrementSlowQuery(operation string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(operation).Inc()
	SlowQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementActivityLogged 增加活动记录计数
func IncrementActivityLogged(kind string) {
	ActivityLoggedCount.WithLabelValues(kind).Inc()
}

// ObserveDailyScore 记录一次得分计算结果
func ObserveDailyScore(score int) {
	DailyScore.Observe(float64(score))
}

// IncrementDashboardCache 记录缓存查询结果
func IncrementDashboardCache(result string) {
	DashboardCacheCount.WithLabelValues(result).Inc()
}

// IncrementEventProcessed 增加事件处理计数
func IncrementEventProcessed(routingKey, status string) {
	EventProcessedCount.WithLabelValues(routingKey, status).Inc()
}
