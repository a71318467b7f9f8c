package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// ErrNotMined is returned for a transaction the node has no receipt for.
var ErrNotMined = errors.New("transaction not found or pending")

// node is the part of ethclient the decode feeder needs.
type node interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Client fetches transaction receipts and block times over JSON-RPC.
type Client struct {
	rpcClient *rpc.Client
	node      node
	retry     RetryPolicy
	logger    *zap.Logger

	mu         sync.RWMutex
	blockTimes map[uint64]uint64
}

// MinedTx is a transaction receipt with the time of its block.
type MinedTx struct {
	Hash    common.Hash
	Receipt *types.Receipt
	// Timestamp is 0 when the block header could not be fetched.
	Timestamp uint64
}

// Dial connects to rpcURL. Every call made through the client follows retry.
func Dial(ctx context.Context, rpcURL string, retry RetryPolicy, logger *zap.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	c := newClient(ethclient.NewClient(rpcClient), retry, logger)
	c.rpcClient = rpcClient
	return c, nil
}

func newClient(n node, retry RetryPolicy, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		node:       n,
		retry:      retry,
		logger:     logger,
		blockTimes: make(map[uint64]uint64),
	}
}

func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// FetchReceipt returns the receipt of a mined transaction. A block time that
// cannot be fetched is logged and left as 0.
func (c *Client) FetchReceipt(ctx context.Context, txHash common.Hash) (MinedTx, error) {
	var receipt *types.Receipt
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		receipt, err = c.node.TransactionReceipt(ctx, txHash)
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			c.logger.Warn("fetch receipt failed", zap.String("tx", txHash.Hex()), zap.Error(err))
		}
		return err
	})
	switch {
	case errors.Is(err, ethereum.NotFound):
		return MinedTx{}, fmt.Errorf("%s: %w", txHash.Hex(), ErrNotMined)
	case err != nil:
		return MinedTx{}, fmt.Errorf("fetch receipt %s: %w", txHash.Hex(), err)
	case receipt == nil:
		return MinedTx{}, fmt.Errorf("%s: %w", txHash.Hex(), ErrNotMined)
	}

	tx := MinedTx{Hash: txHash, Receipt: receipt}
	if receipt.BlockNumber == nil || !receipt.BlockNumber.IsUint64() {
		return tx, nil
	}
	block := receipt.BlockNumber.Uint64()
	ts, err := c.BlockTime(ctx, block)
	if err != nil {
		c.logger.Warn("block timestamp unavailable", zap.Uint64("block", block), zap.Error(err))
		return tx, nil
	}
	tx.Timestamp = ts
	return tx, nil
}

// BlockTime returns the timestamp of a block, cached per client.
func (c *Client) BlockTime(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.blockTimes[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	var header *types.Header
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		header, err = c.node.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		return err
	})
	if err != nil {
		return 0, err
	}
	if header == nil {
		return 0, fmt.Errorf("block %d: %w", number, ethereum.NotFound)
	}

	c.mu.Lock()
	c.blockTimes[number] = header.Time
	c.mu.Unlock()
	return header.Time, nil
}
