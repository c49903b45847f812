package domain

import "strings"

// TokenConfig describes the payment token deployed on a chain.
type TokenConfig struct {
	Address  string `yaml:"address"  json:"address"  validate:"omitempty,eth_addr"`
	Symbol   string `yaml:"symbol"   json:"symbol"   validate:"required"`
	Decimals int    `yaml:"decimals" json:"decimals" validate:"gte=0"`
}

// ChainConfig holds settings for one supported chain.
type ChainConfig struct {
	Key   string      `yaml:"-"     json:"-"`
	Name  string      `yaml:"name"  json:"name"  validate:"required"`
	RPC   string      `yaml:"rpc"   json:"rpc"   validate:"omitempty,url"`
	Token TokenConfig `yaml:"token" json:"token"`
}

// Usable reports whether the entry can be used for payments.
// An entry missing its RPC endpoint or token address is treated as unknown.
func (c ChainConfig) Usable() bool {
	return strings.TrimSpace(c.RPC) != "" && strings.TrimSpace(c.Token.Address) != ""
}
