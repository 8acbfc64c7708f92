// Package metrics 将总线统计导出为 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/uniyakcom/pulse/core"
)

// DefaultNamespace 默认指标前缀
const DefaultNamespace = "pulse"

// Source 指标来源，core.Bus 满足该接口
type Source interface {
	Stats() core.Stats
	State() core.State
}

// Collector 每次抓取时读取 Stats/State，不缓存
type Collector struct {
	src Source

	emitted   *prometheus.Desc
	invoked   *prometheus.Desc
	failed    *prometheus.Desc
	panics    *prometheus.Desc
	events    *prometheus.Desc
	listeners *prometheus.Desc
	history   *prometheus.Desc
	pending   *prometheus.Desc
	running   *prometheus.Desc
	capacity  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建 Collector；namespace 为空时使用 DefaultNamespace
//
// 用法:
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(metrics.NewCollector(bus, "", prometheus.Labels{"bus": "orders"}))
func NewCollector(src Source, namespace string, constLabels prometheus.Labels) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, constLabels)
	}
	return &Collector{
		src:       src,
		emitted:   desc("events_emitted_total", "Number of Emit calls, including events without subscribers."),
		invoked:   desc("handlers_invoked_total", "Number of handler invocations."),
		failed:    desc("handlers_failed_total", "Number of handler failures, including panics and async failures."),
		panics:    desc("handler_panics_total", "Number of recovered handler panics."),
		events:    desc("events", "Number of event names with a subscription bucket."),
		listeners: desc("listeners", "Number of named and wildcard subscriptions."),
		history:   desc("history_entries", "Number of entries in the event history."),
		pending:   desc("async_pending", "Number of tracked async handler tasks not yet finished."),
		running:   desc("workers_running", "Number of running worker pool goroutines."),
		capacity:  desc("workers_capacity", "Worker pool capacity, 0 when tasks run on plain goroutines."),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.emitted
	ch <- c.invoked
	ch <- c.failed
	ch <- c.panics
	ch <- c.events
	ch <- c.listeners
	ch <- c.history
	ch <- c.pending
	ch <- c.running
	ch <- c.capacity
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.Stats()
	state := c.src.State()

	ch <- prometheus.MustNewConstMetric(c.emitted, prometheus.CounterValue, float64(stats.Emitted))
	ch <- prometheus.MustNewConstMetric(c.invoked, prometheus.CounterValue, float64(stats.Invoked))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(stats.Failed))
	ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(stats.Panics))
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.GaugeValue, float64(state.EventCount))
	ch <- prometheus.MustNewConstMetric(c.listeners, prometheus.GaugeValue, float64(state.TotalListeners))
	ch <- prometheus.MustNewConstMetric(c.history, prometheus.GaugeValue, float64(state.HistorySize))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(stats.Pending))
	ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, float64(stats.WorkersRunning))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(stats.WorkersCap))
}
