// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordRegistration(role string)
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordApplicationSubmitted()
	RecordNotificationIssued()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations  *prometheus.CounterVec
	loginSuccess   prometheus.Counter
	loginFail      prometheus.Counter
	applications   prometheus.Counter
	notifications  prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "internmatch_registrations_total",
			Help: "アカウント登録の合計数（役割別）",
		}, []string{"role"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "internmatch_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "internmatch_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		applications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "internmatch_applications_submitted_total",
			Help: "提出された応募の合計数",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "internmatch_notifications_issued_total",
			Help: "発行されたアプリ内通知の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "internmatch_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "internmatch_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.loginSuccess,
		c.loginFail,
		c.applications,
		c.notifications,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordRegistration はアカウント登録を記録する。
func (c *Collector) RecordRegistration(role string) {
	c.registrations.WithLabelValues(role).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordApplicationSubmitted は応募の提出を記録する。
func (c *Collector) RecordApplicationSubmitted() {
	c.applications.Inc()
}

// RecordNotificationIssued は通知の発行を記録する。
func (c *Collector) RecordNotificationIssued() {
	c.notifications.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
