package metrics

import (
	"github.com/MetalBlockchain/metalgo/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const resultLabel = "result"

var resultLabels = []string{resultLabel}

type blockMetrics struct {
	numSealed         prometheus.Counter
	numVerified       *prometheus.CounterVec
	numDecodeFailures prometheus.Counter
}

func newBlockMetrics(registerer prometheus.Registerer) (*blockMetrics, error) {
	m := &blockMetrics{
		numSealed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "blks_sealed",
				Help: "number of blocks sealed and appended",
			},
		),
		numVerified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blks_verified",
				Help: "number of block verifications by outcome",
			},
			resultLabels,
		),
		numDecodeFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "blk_payload_decode_failures",
				Help: "number of block bodies that failed to decode",
			},
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.numSealed),
		registerer.Register(m.numVerified),
		registerer.Register(m.numDecodeFailures),
	)
	return m, errs.Err
}
