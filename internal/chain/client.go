// internal/chain/client.go
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
)

// Client wraps a read-only RPC connection. It is constructed once at
// service start and passed by reference into the oracle; there is no
// lazily-initialized global.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
	timeout time.Duration
}

func NewClient(ctx context.Context, cfg config.ChainConfig) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %w", err)
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chainID, err := eth.ChainID(dialCtx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}

	return &Client{
		eth:     eth,
		chainID: chainID,
		timeout: timeout,
	}, nil
}

func (c *Client) ChainID() *big.Int {
	return c.chainID
}

func (c *Client) Close() {
	c.eth.Close()
}

// callCtx bounds a single RPC round trip.
func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
