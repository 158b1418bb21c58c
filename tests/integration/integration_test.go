package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/MetalBlockchain/metalgo/database/memdb"
	"github.com/MetalBlockchain/metalgo/utils/formatting"
	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sealchain-project/sealchain/api"
	"github.com/sealchain-project/sealchain/client"
	"github.com/sealchain-project/sealchain/config"
	"github.com/sealchain-project/sealchain/node"
	ginkgo "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestIntegration(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "sealchain integration test suites")
}

const requestTimeout = 10 * time.Second

var (
	n      *node.Node
	server *httptest.Server
	cli    client.Client
)

var _ = ginkgo.BeforeSuite(func() {
	cfg := config.Default

	var err error
	n, err = node.New(&cfg, memdb.New(), logging.NoLog{}, prometheus.NewRegistry())
	gomega.Expect(err).Should(gomega.BeNil())

	handlers, err := n.CreateHandlers()
	gomega.Expect(err).Should(gomega.BeNil())

	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.Handle(path, handler)
	}
	server = httptest.NewServer(mux)
	cli = client.New(server.URL, requestTimeout)
})

var _ = ginkgo.AfterSuite(func() {
	server.Close()
	gomega.Expect(n.Shutdown()).Should(gomega.BeNil())
})

func issue(ctx context.Context, payloadText string) (string, uint64) {
	encoded, err := formatting.Encode(formatting.Hex, []byte(payloadText))
	gomega.Expect(err).Should(gomega.BeNil())

	hash, height, err := cli.IssueBlock(ctx, api.FormattedPayload{
		Payload:  encoded,
		Encoding: formatting.Hex,
	})
	gomega.Expect(err).Should(gomega.BeNil())
	return hash, height
}

var _ = ginkgo.Describe("[Ledger]", func() {
	ginkgo.It("answers pings", func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		ok, err := cli.Ping(ctx)
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(ok).Should(gomega.BeTrue())
	})

	ginkgo.It("signals the first block with a null payload", func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		blk, err := cli.GetBlockByHeight(ctx, 0)
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(blk.PreviousBlockHash).Should(gomega.BeNil())

		payload, err := cli.GetPayload(ctx, *blk.Hash)
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(payload).Should(gomega.BeNil())
	})

	ginkgo.It("appends blocks and recovers their payloads", func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		hash, height := issue(ctx, `{"amount":10}`)
		gomega.Expect(height).Should(gomega.BeNumerically(">", 0))

		payload, err := cli.GetPayload(ctx, hash)
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(payload).Should(gomega.Equal(map[string]any{"amount": float64(10)}))

		blk, err := cli.GetBlock(ctx, hash)
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(uint64(blk.Height)).Should(gomega.Equal(height))
		gomega.Expect(blk.PreviousBlockHash).ShouldNot(gomega.BeNil())
	})

	ginkgo.It("verifies many blocks concurrently", func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		hashes := make([]string, 0, 8)
		for i := 0; i < 8; i++ {
			hash, _ := issue(ctx, `{"amount":5}`)
			hashes = append(hashes, hash)
		}

		// Block verifications are independent and order-insensitive.
		results := make([]bool, len(hashes))
		wg := sync.WaitGroup{}
		for i, hash := range hashes {
			wg.Add(1)
			go func(i int, hash string) {
				defer ginkgo.GinkgoRecover()
				defer wg.Done()

				valid, err := cli.VerifyBlock(ctx, hash)
				gomega.Expect(err).Should(gomega.BeNil())
				results[i] = valid
			}(i, hash)
		}
		wg.Wait()

		for _, valid := range results {
			gomega.Expect(valid).Should(gomega.BeTrue())
		}
	})

	ginkgo.It("audits the whole chain", func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		report, err := cli.AuditChain(ctx)
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(report.Valid).Should(gomega.BeTrue())
		gomega.Expect(report.Failures).Should(gomega.BeEmpty())

		hash, height, err := cli.LastAccepted(ctx)
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(report.Blocks).Should(gomega.Equal(height + 1))

		blk, err := cli.GetBlock(ctx, hash)
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(uint64(blk.Height)).Should(gomega.Equal(height))
	})
})
