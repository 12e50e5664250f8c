package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfOperation is perf metric
	PerfOperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tpk",
		Help:         "perf_tpk provides the sample metrics of certificate operations",
		RequiredTags: []string{"op"},
	}

	// PerfKeyringOperation is perf metric
	PerfKeyringOperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_keyring",
		Help:         "perf_keyring provides the sample metrics of keyring loading",
		RequiredTags: []string{"op"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfOperation,
	&PerfKeyringOperation,
}
