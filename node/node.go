package node

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MetalBlockchain/metalgo/database"
	"github.com/MetalBlockchain/metalgo/utils/json"
	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/MetalBlockchain/metalgo/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sealchain-project/sealchain/chain"
	"github.com/sealchain-project/sealchain/config"
	"github.com/sealchain-project/sealchain/metrics"
	"github.com/sealchain-project/sealchain/state"

	"github.com/gorilla/rpc/v2"
)

const Endpoint = "/rpc"

// Node ties the block store, the chain manager and the RPC surface
// together.
type Node struct {
	log logging.Logger

	// Used to get time. Useful for faking time during tests.
	clock mockable.Clock

	metrics metrics.Metrics

	db    database.Database
	state state.State
	chain *chain.Manager
}

func New(
	cfg *config.Config,
	db database.Database,
	log logging.Logger,
	registerer prometheus.Registerer,
) (*Node, error) {
	n := &Node{
		log: log,
		db:  db,
	}

	var err error
	if n.metrics, err = metrics.New(registerer); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if n.state, err = state.New(db, cfg.BlockCacheSize, cfg.BlockHashCacheSize); err != nil {
		return nil, fmt.Errorf("failed to initialize state: %w", err)
	}

	if n.chain, err = chain.New(n.state, &n.clock, log); err != nil {
		return nil, fmt.Errorf("failed to initialize chain: %w", err)
	}

	return n, nil
}

// Chain exposes the chain manager, the only sanctioned append path.
func (n *Node) Chain() *chain.Manager {
	return n.chain
}

func (n *Node) CreateHandlers() (map[string]http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(n.metrics.InterceptRequest)
	server.RegisterAfterFunc(n.metrics.AfterRequest)
	service := &Service{
		node: n,
	}

	err := server.RegisterService(service, "sealchain")
	return map[string]http.Handler{
		Endpoint: server,
	}, err
}

func (n *Node) Shutdown() error {
	return errors.Join(
		n.state.Close(),
		n.db.Close(),
	)
}
