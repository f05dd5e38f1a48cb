// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は認証ゲートのPrometheusメトリクスを収集する。
type Collector struct {
	loginSuccess  prometheus.Counter
	loginFailure  prometheus.Counter
	tokenRejected prometheus.Counter
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_login_failure_total",
			Help: "ログイン失敗の合計数",
		}),
		tokenRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_token_rejected_total",
			Help: "提示されたが受け入れられなかったセッショントークンの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFailure,
		c.tokenRejected,
		c.httpStatus,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailure.Inc()
}

// RecordTokenRejected は拒否されたセッショントークンを記録する。
func (c *Collector) RecordTokenRejected() {
	c.tokenRejected.Inc()
}

// RecordHTTPStatus はステータスコード別のレスポンス数を記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusメトリクス公開用のHTTPハンドラーを返す。
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
