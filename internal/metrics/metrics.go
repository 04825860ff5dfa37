package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	processStarts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessiond",
		Name:      "process_starts_total",
		Help:      "Total number of session processes spawned.",
	}, []string{"process"})

	shutdownSignals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessiond",
		Name:      "shutdown_signals_total",
		Help:      "Total number of termination signals delivered to session processes.",
	}, []string{"process"})

	cleanupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sessiond",
		Name:      "cleanup_failures_total",
		Help:      "Total number of failed lock-file removal attempts.",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sessiond",
		Name:      "build_info",
		Help:      "Build metadata for the running sessiond binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(processStarts, shutdownSignals, cleanupFailures, buildInfo)
}

// Registry returns the Prometheus registry containing all sessiond metrics.
func Registry() *prometheus.Registry {
	return registry
}

// IncProcessStart records a successful spawn of the named session process.
func IncProcessStart(process string) {
	if process == "" {
		return
	}
	processStarts.WithLabelValues(process).Inc()
}

// IncShutdownSignal records a termination signal delivered to the named
// session process.
func IncShutdownSignal(process string) {
	if process == "" {
		return
	}
	shutdownSignals.WithLabelValues(process).Inc()
}

// IncCleanupFailure records a failed lock or socket removal attempt.
func IncCleanupFailure() {
	cleanupFailures.Inc()
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
