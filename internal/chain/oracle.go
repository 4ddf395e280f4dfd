// internal/chain/oracle.go
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Transaction is the oracle's view of a submitted transaction.
type Transaction struct {
	Hash  common.Hash
	From  common.Address
	To    *common.Address
	Value *big.Int
}

// Receipt carries the inclusion result for a mined transaction.
type Receipt struct {
	Status      uint64
	BlockNumber uint64
	Logs        []*gethtypes.Log
}

// Oracle is the read-only view of the ledger the verifier consumes. A
// missing transaction or receipt is reported via the found flag, not an
// error; errors are reserved for transport failures, which callers treat
// as transient and retry with backoff.
type Oracle interface {
	GetTransaction(ctx context.Context, txHash common.Hash) (*Transaction, bool, error)
	GetReceipt(ctx context.Context, txHash common.Hash) (*Receipt, bool, error)
	GetChainHeight(ctx context.Context) (uint64, error)
}

// ErrNoRPCEndpoint is returned by the offline oracle for every call.
var ErrNoRPCEndpoint = errors.New("no chain RPC endpoint configured")

type offlineOracle struct{}

// NewOfflineOracle stands in when no RPC URL is configured. Every call
// fails as a transport error, so confirmation requests surface as
// retryable unavailability instead of false rejections.
func NewOfflineOracle() Oracle {
	return offlineOracle{}
}

func (offlineOracle) GetTransaction(ctx context.Context, txHash common.Hash) (*Transaction, bool, error) {
	return nil, false, ErrNoRPCEndpoint
}

func (offlineOracle) GetReceipt(ctx context.Context, txHash common.Hash) (*Receipt, bool, error) {
	return nil, false, ErrNoRPCEndpoint
}

func (offlineOracle) GetChainHeight(ctx context.Context) (uint64, error) {
	return 0, ErrNoRPCEndpoint
}

type ethOracle struct {
	client *Client
}

func NewOracle(client *Client) Oracle {
	return &ethOracle{client: client}
}

func (o *ethOracle) GetTransaction(ctx context.Context, txHash common.Hash) (*Transaction, bool, error) {
	callCtx, cancel := o.client.callCtx(ctx)
	defer cancel()

	tx, _, err := o.client.eth.TransactionByHash(callCtx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	signer := gethtypes.LatestSignerForChainID(o.client.chainID)
	from, err := gethtypes.Sender(signer, tx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to recover transaction sender: %w", err)
	}

	return &Transaction{
		Hash:  tx.Hash(),
		From:  from,
		To:    tx.To(),
		Value: tx.Value(),
	}, true, nil
}

func (o *ethOracle) GetReceipt(ctx context.Context, txHash common.Hash) (*Receipt, bool, error) {
	callCtx, cancel := o.client.callCtx(ctx)
	defer cancel()

	receipt, err := o.client.eth.TransactionReceipt(callCtx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to fetch receipt: %w", err)
	}

	return &Receipt{
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Logs:        receipt.Logs,
	}, true, nil
}

func (o *ethOracle) GetChainHeight(ctx context.Context) (uint64, error) {
	callCtx, cancel := o.client.callCtx(ctx)
	defer cancel()

	height, err := o.client.eth.BlockNumber(callCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch chain height: %w", err)
	}

	return height, nil
}
