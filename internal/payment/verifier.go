package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vietddude/paygate/internal/core/domain"
	"github.com/vietddude/paygate/internal/core/price"
	"github.com/vietddude/paygate/internal/infra/chain/evm"
	"github.com/vietddude/paygate/internal/metrics"
)

const minTxHashLen = 66

// ChainLookup resolves a chain key to a usable chain entry.
type ChainLookup interface {
	Lookup(key string) (domain.ChainConfig, bool)
}

// ClientSource hands out RPC clients per chain.
type ClientSource interface {
	Get(ctx context.Context, chain domain.ChainConfig) (evm.ChainClient, error)
}

// Result describes a verified payment.
type Result struct {
	Chain     domain.ChainConfig
	Transfer  domain.TransferEvent
	Threshold *big.Int
}

// Verifier confirms that a transaction paid the operator at least the price.
type Verifier struct {
	chains     ChainLookup
	clients    ClientSource
	payTo      common.Address
	priceUnits string
	log        *slog.Logger
}

// NewVerifier creates a verifier for the given payout address and price.
func NewVerifier(
	chains ChainLookup,
	clients ClientSource,
	payTo string,
	priceUnits string,
	log *slog.Logger,
) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{
		chains:     chains,
		clients:    clients,
		payTo:      common.HexToAddress(payTo),
		priceUnits: priceUnits,
		log:        log.With("component", "verifier"),
	}
}

// Verify checks txHash on chainKey. The returned error matches one of the
// package sentinels, or wraps an infrastructure fault.
func (v *Verifier) Verify(ctx context.Context, txHash, chainKey string) (res *Result, err error) {
	chain, ok := v.chains.Lookup(chainKey)
	label := chain.Key
	if !ok {
		label = "unknown"
	}
	defer func() {
		metrics.VerifyTotal.WithLabelValues(label, Code(err)).Inc()
	}()

	if !ok {
		return nil, ErrBadChain
	}

	hash, err := parseTxHash(txHash)
	if err != nil {
		return nil, err
	}

	client, err := v.clients.Get(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("client for %s: %w", chain.Key, err)
	}

	receipt, err := client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get receipt %s on %s: %w", hash.Hex(), chain.Key, err)
	}
	if receipt == nil {
		return nil, ErrNotFound
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, ErrFailedTx
	}

	threshold := price.ToBaseUnits(v.priceUnits, chain.Token.Decimals)
	ev, found := v.firstQualifying(receipt.Logs, common.HexToAddress(chain.Token.Address), threshold)
	if !found {
		return nil, ErrNotPaid
	}

	v.log.Info("Payment verified",
		"chain", chain.Key,
		"tx", ev.TxHash,
		"from", ev.From,
		"amount", price.FormatUnits(ev.Value, chain.Token.Decimals),
		"symbol", chain.Token.Symbol,
	)

	return &Result{Chain: chain, Transfer: ev, Threshold: threshold}, nil
}

// firstQualifying returns the first token transfer to the operator that
// meets the threshold. Later logs are not examined.
func (v *Verifier) firstQualifying(
	logs []*types.Log,
	token common.Address,
	threshold *big.Int,
) (domain.TransferEvent, bool) {
	for _, l := range logs {
		if l == nil || l.Address != token {
			continue
		}
		ev, err := evm.DecodeTransfer(*l)
		if err != nil {
			continue
		}
		if common.HexToAddress(ev.To) != v.payTo {
			continue
		}
		if ev.Value.Cmp(threshold) >= 0 {
			return ev, true
		}
	}
	return domain.TransferEvent{}, false
}

func parseTxHash(s string) (common.Hash, error) {
	if !strings.HasPrefix(s, "0x") || len(s) < minTxHashLen {
		return common.Hash{}, ErrBadTxHash
	}
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, ErrBadTxHash
	}
	return common.BytesToHash(b), nil
}
