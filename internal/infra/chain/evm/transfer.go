package evm

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vietddude/paygate/internal/core/domain"
)

const erc20TransferABI = `[{"anonymous":false,"inputs":[` +
	`{"indexed":true,"name":"from","type":"address"},` +
	`{"indexed":true,"name":"to","type":"address"},` +
	`{"indexed":false,"name":"value","type":"uint256"}` +
	`],"name":"Transfer","type":"event"}]`

// ERC20 Transfer event signature
const transferEventSig = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

var (
	// TransferTopic is keccak256("Transfer(address,address,uint256)").
	TransferTopic = common.HexToHash(transferEventSig)

	// ErrNotTransfer is returned for logs that are not ERC-20 transfers.
	ErrNotTransfer = errors.New("not an erc20 transfer log")

	transferEvent = mustTransferEvent()
)

func mustTransferEvent() abi.Event {
	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		panic(err)
	}
	return parsed.Events["Transfer"]
}

// DecodeTransfer decodes an ERC-20 Transfer log.
func DecodeTransfer(l types.Log) (domain.TransferEvent, error) {
	if len(l.Topics) != 3 || l.Topics[0] != TransferTopic {
		return domain.TransferEvent{}, ErrNotTransfer
	}

	values, err := transferEvent.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return domain.TransferEvent{}, fmt.Errorf("unpack transfer value: %w", err)
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return domain.TransferEvent{}, fmt.Errorf("unexpected transfer value type %T", values[0])
	}

	return domain.TransferEvent{
		From:        common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
		To:          common.BytesToAddress(l.Topics[2].Bytes()).Hex(),
		Value:       value,
		Contract:    l.Address.Hex(),
		TxHash:      l.TxHash.Hex(),
		BlockNumber: l.BlockNumber,
		LogIndex:    l.Index,
	}, nil
}

// TransferQuery filters token Transfer logs to a recipient in [from, to].
func TransferQuery(token, to common.Address, from, toBlock uint64) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{token},
		Topics: [][]common.Hash{
			{TransferTopic},
			nil,
			{common.BytesToHash(to.Bytes())},
		},
	}
}
