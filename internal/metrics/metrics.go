package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "realty_promo"

// 任务结果标签
const (
	OutcomeNotified    = "notified"
	OutcomeSkipped     = "skipped"
	OutcomeFailed      = "failed"
	OutcomeRenewed     = "renewed"
	OutcomeDeactivated = "deactivated"
)

var (
	registerOnce sync.Once

	jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Promotion job invocations by job and status.",
	}, []string{"job", "status"})

	jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Promotion job wall time.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})

	jobCandidates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_candidates_total",
		Help:      "Promotion job candidates by job and outcome.",
	}, []string{"job", "outcome"})

	commissionsComputed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commissions_computed_total",
		Help:      "Transactions created by type.",
	}, []string{"transaction_type"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
)

// Register 注册全部指标到默认 Registry，重复调用安全
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(jobRuns, jobDuration, jobCandidates, commissionsComputed, httpRequests)
	})
}

// Handler 返回 /metrics 处理器
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// ObserveJob 记录一次任务执行
func ObserveJob(job string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	jobRuns.WithLabelValues(job, status).Inc()
	jobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

// AddCandidates 累加任务候选处理结果
func AddCandidates(job, outcome string, n int) {
	if n <= 0 {
		return
	}
	jobCandidates.WithLabelValues(job, outcome).Add(float64(n))
}

// IncCommission 记录一次佣金计算
func IncCommission(transactionType string) {
	commissionsComputed.WithLabelValues(transactionType).Inc()
}

// IncHTTPRequest 记录一次 HTTP 请求
func IncHTTPRequest(route, method, status string) {
	httpRequests.WithLabelValues(route, method, status).Inc()
}
