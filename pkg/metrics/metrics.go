package metrics

import (
	"sync"

	"github.com/penglongli/gin-metrics/ginmetrics"
	"go.uber.org/zap"
)

const (
	RegistryRequestsTotal = "registry_requests_total"
	RegistryCacheTotal    = "registry_cache_lookups_total"
)

var registerOnce sync.Once

// GetMonitor configures the process-wide gin-metrics monitor and registers
// the application metrics on first use.
func GetMonitor(path string) *ginmetrics.Monitor {
	m := ginmetrics.GetMonitor()
	m.SetMetricPath(path)
	m.SetSlowTime(1)
	// request duration buckets, used for p95 and p99
	m.SetDuration([]float64{0.05, 0.1, 0.2, 0.3, 0.5, 1, 2, 5})

	registerOnce.Do(func() { register(m) })
	return m
}

func register(m *ginmetrics.Monitor) {
	custom := []*ginmetrics.Metric{
		{
			Type:        ginmetrics.Counter,
			Name:        RegistryRequestsTotal,
			Description: "outbound drug registry requests by outcome",
			Labels:      []string{"outcome"},
		},
		{
			Type:        ginmetrics.Counter,
			Name:        RegistryCacheTotal,
			Description: "registry search lookups by the cache level that answered",
			Labels:      []string{"level"},
		},
	}
	for _, metric := range custom {
		if err := m.AddMetric(metric); err != nil {
			zap.L().Warn("Failed to register metric", zap.String("name", metric.Name), zap.Error(err))
		}
	}
}

// ObserveRegistryCall counts one registry request. outcome is one of
// success, not_found, timeout, error.
func ObserveRegistryCall(outcome string) {
	inc(RegistryRequestsTotal, outcome)
}

// ObserveCacheLookup counts one cached registry lookup answered at level.
func ObserveCacheLookup(level string) {
	inc(RegistryCacheTotal, level)
}

// inc is a no-op until GetMonitor has registered the metric.
func inc(name, label string) {
	_ = ginmetrics.GetMonitor().GetMetric(name).Inc([]string{label})
}
