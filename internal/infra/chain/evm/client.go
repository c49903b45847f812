package evm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/vietddude/paygate/internal/infra/rpc"
	"github.com/vietddude/paygate/internal/metrics"
)

// ChainClient is the subset of the JSON-RPC surface the gateway needs.
// *ethclient.Client satisfies it.
type ChainClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	Close()
}

// Client decorates a ChainClient with retries and latency metrics.
type Client struct {
	chain string
	eth   ChainClient
	retry rpc.RetryConfig
}

var _ ChainClient = (*Client)(nil)

// NewClient wraps eth for the given chain key.
func NewClient(chain string, eth ChainClient, retry rpc.RetryConfig) *Client {
	return &Client{chain: chain, eth: eth, retry: retry}
}

// RequestTimeout bounds a single HTTP JSON-RPC request.
const RequestTimeout = 30 * time.Second

// Dial connects to an HTTP or WebSocket endpoint.
func Dial(ctx context.Context, chain, url string) (*Client, error) {
	c, err := gethrpc.DialOptions(ctx, url, gethrpc.WithHTTPClient(&http.Client{Timeout: RequestTimeout}))
	if err != nil {
		return nil, fmt.Errorf("dial %s rpc: %w", chain, err)
	}
	return NewClient(chain, ethclient.NewClient(c), rpc.DefaultRetryConfig), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	err := c.call(ctx, "eth_blockNumber", func(ctx context.Context) error {
		var err error
		n, err = c.eth.BlockNumber(ctx)
		return err
	})
	return n, err
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := c.call(ctx, "eth_getTransactionReceipt", func(ctx context.Context) error {
		var err error
		receipt, err = c.eth.TransactionReceipt(ctx, txHash)
		return err
	})
	return receipt, err
}

func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.call(ctx, "eth_getLogs", func(ctx context.Context) error {
		var err error
		logs, err = c.eth.FilterLogs(ctx, q)
		return err
	})
	return logs, err
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) call(ctx context.Context, method string, fn func(context.Context) error) error {
	start := time.Now()
	err := rpc.Do(ctx, c.retry, fn)
	metrics.RPCLatency.WithLabelValues(c.chain, method).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ethereum.NotFound) {
		metrics.RPCErrorsTotal.WithLabelValues(c.chain, method).Inc()
	}
	return err
}
