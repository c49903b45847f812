package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/paygate/internal/core/domain"
)

func TestRevenueKey(t *testing.T) {
	assert.Equal(t, "paygate:revenue:base", revenueKey("base"))
}

func TestEncodeRecord(t *testing.T) {
	s, err := encodeRecord(domain.RevenueRecord{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Chain:     "base",
		Token:     "USDC",
		To:        "0x1111111111111111111111111111111111111111",
		Value:     "1000000",
		TxHash:    "0xabc",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ts":"2026-01-02T03:04:05Z","chain":"base","token":"USDC",`+
		`"to":"0x1111111111111111111111111111111111111111","value":"1000000","txHash":"0xabc"}`, s)
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{URL: "redis://localhost:6379/0"}.Enabled())
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(Config{URL: "not-a-redis-url"})
	assert.Error(t, err)
}
