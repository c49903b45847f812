package domain

import "math/big"

// TransferEvent is a decoded ERC-20 Transfer log.
type TransferEvent struct {
	From        string
	To          string
	Value       *big.Int
	Contract    string
	TxHash      string
	BlockNumber uint64
	LogIndex    uint
}
