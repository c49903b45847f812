package evm

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferLog(token, from, to ethcommon.Address, value *big.Int) types.Log {
	return types.Log{
		Address: token,
		Topics: []ethcommon.Hash{
			TransferTopic,
			ethcommon.BytesToHash(from.Bytes()),
			ethcommon.BytesToHash(to.Bytes()),
		},
		Data:        ethcommon.LeftPadBytes(value.Bytes(), 32),
		TxHash:      ethcommon.HexToHash("0xabc"),
		BlockNumber: 42,
		Index:       3,
	}
}

func TestTransferTopicMatchesABI(t *testing.T) {
	assert.Equal(t, transferEvent.ID, TransferTopic)
}

func TestDecodeTransfer(t *testing.T) {
	token := ethcommon.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	from := ethcommon.HexToAddress("0x1000000000000000000000000000000000000001")
	to := ethcommon.HexToAddress("0x2000000000000000000000000000000000000002")

	ev, err := DecodeTransfer(transferLog(token, from, to, big.NewInt(1_000_000)))
	require.NoError(t, err)

	assert.Equal(t, from.Hex(), ev.From)
	assert.Equal(t, to.Hex(), ev.To)
	assert.Equal(t, token.Hex(), ev.Contract)
	assert.Equal(t, 0, ev.Value.Cmp(big.NewInt(1_000_000)))
	assert.Equal(t, uint64(42), ev.BlockNumber)
	assert.Equal(t, uint(3), ev.LogIndex)
}

func TestDecodeTransfer_Malformed(t *testing.T) {
	token := ethcommon.HexToAddress("0xaa")
	good := transferLog(token, ethcommon.HexToAddress("0x01"), ethcommon.HexToAddress("0x02"), big.NewInt(5))

	wrongTopic := good
	wrongTopic.Topics = []ethcommon.Hash{ethcommon.HexToHash("0x1234"), good.Topics[1], good.Topics[2]}

	missingTopic := good
	missingTopic.Topics = good.Topics[:2]

	emptyData := good
	emptyData.Data = nil

	_, err := DecodeTransfer(wrongTopic)
	assert.ErrorIs(t, err, ErrNotTransfer)

	_, err = DecodeTransfer(missingTopic)
	assert.ErrorIs(t, err, ErrNotTransfer)

	_, err = DecodeTransfer(emptyData)
	assert.Error(t, err)
}

func TestTransferQuery(t *testing.T) {
	token := ethcommon.HexToAddress("0xaa")
	to := ethcommon.HexToAddress("0xbb")

	q := TransferQuery(token, to, 501, 1000)

	assert.Equal(t, int64(501), q.FromBlock.Int64())
	assert.Equal(t, int64(1000), q.ToBlock.Int64())
	assert.Equal(t, []ethcommon.Address{token}, q.Addresses)
	require.Len(t, q.Topics, 3)
	assert.Equal(t, []ethcommon.Hash{TransferTopic}, q.Topics[0])
	assert.Nil(t, q.Topics[1])
	assert.Equal(t, []ethcommon.Hash{ethcommon.BytesToHash(to.Bytes())}, q.Topics[2])
}
