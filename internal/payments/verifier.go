// internal/payments/verifier.go
package payments

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ValenteCreativo/Side-B-sub000/internal/chain"
)

type Reason string

const (
	ReasonTxNotFound                Reason = "TX_NOT_FOUND"
	ReasonReceiptNotFound           Reason = "RECEIPT_NOT_FOUND"
	ReasonTxFailed                  Reason = "TX_FAILED"
	ReasonInsufficientConfirmations Reason = "INSUFFICIENT_CONFIRMATIONS"
	ReasonObligationUnmet           Reason = "OBLIGATION_UNMET"
)

// Retryable reports whether the caller should poll again instead of
// treating the purchase as dead. A transaction that is simply not mined
// yet resolves itself; a failed or underpaying one never will.
func (r Reason) Retryable() bool {
	return r == ReasonReceiptNotFound || r == ReasonInsufficientConfirmations
}

// Result is the outcome of verifying one transaction against a set of
// obligations.
type Result struct {
	Valid         bool             `json:"valid"`
	Reason        Reason           `json:"reason,omitempty"`
	Detail        string           `json:"detail,omitempty"`
	Payer         common.Address   `json:"payer,omitempty"`
	Recipients    []common.Address `json:"recipients,omitempty"`
	BlockNumber   uint64           `json:"block_number,omitempty"`
	Confirmations uint64           `json:"confirmations,omitempty"`
}

// transferTopic is the event signature of ERC-20 Transfer(address,address,uint256).
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// Verifier decides whether a transaction hash satisfies a set of payment
// obligations. One Verify call performs at most three RPC round trips
// (transaction, receipt, height) and never polls internally; retry policy
// belongs to the caller.
type Verifier struct {
	oracle chain.Oracle
	token  common.Address
}

// NewVerifier wires the verifier to its ledger oracle. token is the
// settlement token contract whose Transfer logs prove token obligations.
func NewVerifier(oracle chain.Oracle, token common.Address) *Verifier {
	return &Verifier{
		oracle: oracle,
		token:  token,
	}
}

// Verify implements the verification algorithm: fetch transaction and
// receipt, gate on receipt status and confirmation depth, then require
// every obligation to be individually satisfied. Token obligations are
// proven by a Transfer log to the obligation recipient with a sufficient
// amount; a successful receipt alone proves nothing about who got paid.
func (v *Verifier) Verify(ctx context.Context, txHash common.Hash, obligations []Obligation, minConfirmations uint64) (*Result, error) {
	tx, found, err := v.oracle.GetTransaction(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{
			Reason: ReasonTxNotFound,
			Detail: "transaction is unknown to the node",
		}, nil
	}

	receipt, found, err := v.oracle.GetReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{
			Reason: ReasonReceiptNotFound,
			Detail: "transaction is not mined yet",
			Payer:  tx.From,
		}, nil
	}

	if receipt.Status != 1 {
		return &Result{
			Reason:      ReasonTxFailed,
			Detail:      "transaction reverted on chain",
			Payer:       tx.From,
			BlockNumber: receipt.BlockNumber,
		}, nil
	}

	height, err := v.oracle.GetChainHeight(ctx)
	if err != nil {
		return nil, err
	}

	// A reorg can briefly leave the head behind the inclusion block;
	// report zero confirmations rather than underflowing.
	var confirmations uint64
	if height >= receipt.BlockNumber {
		confirmations = height - receipt.BlockNumber + 1
	}

	if confirmations < minConfirmations {
		return &Result{
			Reason:        ReasonInsufficientConfirmations,
			Detail:        fmt.Sprintf("%d of %d confirmations", confirmations, minConfirmations),
			Payer:         tx.From,
			BlockNumber:   receipt.BlockNumber,
			Confirmations: confirmations,
		}, nil
	}

	recipients := make([]common.Address, 0, len(obligations))
	for _, obligation := range obligations {
		if !v.satisfied(tx, receipt, obligation) {
			return &Result{
				Reason:        ReasonObligationUnmet,
				Detail:        fmt.Sprintf("%s obligation of %s %s to %s not satisfied", obligation.Role, obligation.AmountUSD.StringFixed(2), obligation.Asset, obligation.Recipient.Hex()),
				Payer:         tx.From,
				BlockNumber:   receipt.BlockNumber,
				Confirmations: confirmations,
			}, nil
		}
		recipients = append(recipients, obligation.Recipient)
	}

	return &Result{
		Valid:         true,
		Payer:         tx.From,
		Recipients:    recipients,
		BlockNumber:   receipt.BlockNumber,
		Confirmations: confirmations,
	}, nil
}

func (v *Verifier) satisfied(tx *chain.Transaction, receipt *chain.Receipt, obligation Obligation) bool {
	if obligation.Asset == AssetNative {
		return tx.To != nil && *tx.To == obligation.Recipient && tx.Value != nil && tx.Value.Sign() > 0
	}

	minimum := obligation.TokenUnits()
	for _, log := range receipt.Logs {
		if log.Address != v.token {
			continue
		}
		if len(log.Topics) != 3 || log.Topics[0] != transferTopic {
			continue
		}
		if common.BytesToAddress(log.Topics[2].Bytes()) != obligation.Recipient {
			continue
		}
		amount := new(big.Int).SetBytes(log.Data)
		if amount.Cmp(minimum) >= 0 {
			return true
		}
	}

	return false
}
