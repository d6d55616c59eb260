package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

var (
	// Define a custom registry
	Registry *prometheus.Registry

	RpcCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_zbx_rpc_calls_total",
		Help: "The total number of Zabbix API calls by method and result",
	}, []string{"method", "result"})

	SenderValuesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_zbx_sender_values_total",
		Help: "The total number of values handed to zabbix_sender by item key and result",
	}, []string{"key", "result"})

	ProbeOutcomeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_zbx_probe_outcome_total",
		Help: "The total number of probed mongo hosts by role and outcome",
	}, []string{"role", "outcome"})

	ProvisionStepTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_zbx_provision_step_total",
		Help: "The total number of provisioning steps by step and result",
	}, []string{"step", "result"})
)

func init() {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(RpcCallsTotal)
	Registry.MustRegister(SenderValuesTotal)
	Registry.MustRegister(ProbeOutcomeTotal)
	Registry.MustRegister(ProvisionStepTotal)
}

func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
// An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, Registry)
}
