package backend

import (
	"context"

	"github.com/egaotan/solana-sandwich/config"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

type Backend struct {
	log        *logrus.Logger
	rpcClient  *rpc.Client
	ctx        context.Context
	commitment rpc.CommitmentType
	wallets    []*Wallet
	player     solana.PublicKey
}

func NewBackend(ctx context.Context, log *logrus.Logger, nodes []*config.Node) *Backend {
	endpoint := nodes[0].Rpc
	for _, node := range nodes {
		if node.Usable {
			endpoint = node.Rpc
			break
		}
	}
	backend := &Backend{
		log:        log,
		rpcClient:  rpc.New(endpoint),
		ctx:        ctx,
		commitment: rpc.CommitmentProcessed,
		wallets:    make([]*Wallet, 0),
	}
	backend.log.Printf("backend rpc endpoint: %s", endpoint)
	return backend
}
