package evmrpc

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	pkgerrors "github.com/pkg/errors"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/config"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

type ethClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type EvmRPC struct {
	network model.Network
	client  ethClient
}

// New dials one client per network that has an RPC endpoint configured.
// Networks without an endpoint are skipped.
func New(appConfig *config.AppConfig, logger *logger.Logger) (map[model.Network]ChainReader, error) {
	endpoints := map[model.Network]string{
		model.NetworkEthereum: appConfig.Blockchain.EthereumRPCEndpoint,
		model.NetworkApechain: appConfig.Blockchain.ApechainRPCEndpoint,
	}

	readers := make(map[model.Network]ChainReader, len(endpoints))
	for network, endpoint := range endpoints {
		if endpoint == "" {
			logger.Info("[evmrpc.New] rpc endpoint not configured, skipping", map[string]string{
				"network": string(network),
			})
			continue
		}

		client, err := ethclient.Dial(endpoint)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to dial %s rpc", network)
		}
		readers[network] = NewWithClient(network, client)
	}

	return readers, nil
}

func NewWithClient(network model.Network, client ethClient) *EvmRPC {
	return &EvmRPC{
		network: network,
		client:  client,
	}
}

func (e *EvmRPC) Network() model.Network {
	return e.network
}

func (e *EvmRPC) BlockNumber(ctx context.Context) (uint64, error) {
	head, err := e.client.BlockNumber(ctx)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get %s block number", e.network)
	}
	return head, nil
}

func (e *EvmRPC) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := e.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrapf(err, "failed to get %s receipt", e.network)
	}
	return receipt, nil
}
