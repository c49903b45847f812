// Package registry holds the table of supported chains and their payment tokens.
//
// The table is fixed for the process lifetime. It is built either from the
// embedded defaults or, when the operator supplies an override, entirely from
// that override. The two are never merged.
package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/vietddude/paygate/internal/core/domain"
)

//go:embed chains.yaml
var defaultChains []byte

// Registry is a read-only lookup table keyed by lowercase chain key.
type Registry struct {
	chains map[string]domain.ChainConfig
}

// Default builds the registry from the embedded chain table.
func Default() (*Registry, error) {
	var table map[string]domain.ChainConfig
	expanded := os.ExpandEnv(string(defaultChains))
	if err := yaml.UnmarshalStrict([]byte(expanded), &table); err != nil {
		return nil, fmt.Errorf("failed to parse default chains: %w", err)
	}
	return build(table)
}

// FromJSON builds the registry from an operator-supplied JSON document of the
// form {"<key>": {"name", "rpc", "token": {"address", "symbol", "decimals"}}}.
// Unknown fields and type mismatches are rejected.
func FromJSON(raw []byte) (*Registry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var table map[string]domain.ChainConfig
	if err := dec.Decode(&table); err != nil {
		return nil, fmt.Errorf("invalid chain override: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid chain override: trailing data")
	}
	return build(table)
}

// New builds a registry from an in-memory table.
func New(table map[string]domain.ChainConfig) (*Registry, error) {
	return build(table)
}

func build(table map[string]domain.ChainConfig) (*Registry, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("chain table is empty")
	}

	validate := validator.New()
	chains := make(map[string]domain.ChainConfig, len(table))
	for key, cfg := range table {
		k := strings.ToLower(strings.TrimSpace(key))
		if k == "" {
			return nil, fmt.Errorf("chain table has an empty key")
		}
		if _, dup := chains[k]; dup {
			return nil, fmt.Errorf("duplicate chain key %q", k)
		}
		if err := validate.Struct(cfg); err != nil {
			return nil, fmt.Errorf("chain %q: %w", k, err)
		}
		cfg.Key = k
		chains[k] = cfg
	}

	return &Registry{chains: chains}, nil
}

// Lookup returns the chain for key. Keys are case-insensitive. Entries without
// an RPC endpoint or token address are reported as absent.
func (r *Registry) Lookup(key string) (domain.ChainConfig, bool) {
	cfg, ok := r.chains[strings.ToLower(strings.TrimSpace(key))]
	if !ok || !cfg.Usable() {
		return domain.ChainConfig{}, false
	}
	return cfg, true
}

// Keys lists every usable chain key in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.chains))
	for k, cfg := range r.chains {
		if cfg.Usable() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Chains returns every usable chain ordered by key.
func (r *Registry) Chains() []domain.ChainConfig {
	keys := r.Keys()
	out := make([]domain.ChainConfig, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.chains[k])
	}
	return out
}
