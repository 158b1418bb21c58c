package metrics

import (
	"github.com/MetalBlockchain/metalgo/utils/metric"
	"github.com/MetalBlockchain/metalgo/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

var _ Metrics = (*metrics)(nil)

type Metrics interface {
	metric.APIInterceptor

	// Mark that a block was sealed and appended.
	MarkSealed()
	// Mark the outcome of one block verification.
	MarkVerified(valid bool)
	// Mark that a block body failed to decode.
	MarkDecodeFailure()
}

func New(registerer prometheus.Registerer) (Metrics, error) {
	blockMetrics, err := newBlockMetrics(registerer)
	m := &metrics{
		blockMetrics: blockMetrics,
	}

	errs := wrappers.Errs{Err: err}
	apiRequestMetrics, err := metric.NewAPIInterceptor(registerer)
	errs.Add(err)
	m.APIInterceptor = apiRequestMetrics

	return m, errs.Err
}

type metrics struct {
	metric.APIInterceptor

	blockMetrics *blockMetrics
}

func (m *metrics) MarkSealed() {
	m.blockMetrics.numSealed.Inc()
}

func (m *metrics) MarkVerified(valid bool) {
	result := "valid"
	if !valid {
		result = "tampered"
	}
	m.blockMetrics.numVerified.With(prometheus.Labels{
		resultLabel: result,
	}).Inc()
}

func (m *metrics) MarkDecodeFailure() {
	m.blockMetrics.numDecodeFailures.Inc()
}
