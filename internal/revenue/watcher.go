package revenue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/paygate/internal/core/domain"
	"github.com/vietddude/paygate/internal/core/price"
	"github.com/vietddude/paygate/internal/infra/chain/evm"
	"github.com/vietddude/paygate/internal/metrics"
)

const (
	DefaultInterval = 60 * time.Second
	// DefaultLookback is how far behind head a cold cursor starts.
	DefaultLookback uint64 = 500
	// DefaultChunkSize caps the block span of one eth_getLogs call.
	DefaultChunkSize uint64 = 500
)

// ClientSource hands out RPC clients per chain.
type ClientSource interface {
	Get(ctx context.Context, chain domain.ChainConfig) (evm.ChainClient, error)
}

// Config holds watcher settings.
type Config struct {
	PayTo      string
	PriceUnits string
	Interval   time.Duration
	Lookback   uint64
	ChunkSize  uint64
}

// Cursor is the last block scanned for a chain. Last is nil until the
// first successful tick.
type Cursor struct {
	Chain string
	Last  *uint64
}

// Outcome classifies a tick.
type Outcome int

const (
	// TickOK means the whole range was scanned.
	TickOK Outcome = iota
	// TickPartial means some chunks failed and were skipped.
	TickPartial
	// TickFault means the tick could not run; the cursor did not move.
	TickFault
)

func (o Outcome) String() string {
	switch o {
	case TickOK:
		return "ok"
	case TickPartial:
		return "partial"
	case TickFault:
		return "fault"
	default:
		return "unknown"
	}
}

// TickResult reports what one tick did. All outcomes are recoverable; the
// scheduler always reschedules.
type TickResult struct {
	Chain         string
	Outcome       Outcome
	From, To      uint64
	Records       int
	SkippedChunks int
	Err           error
}

// Watcher scans chain logs for transfers to the operator and writes them
// to the configured sinks. It keeps one cursor per chain in memory.
type Watcher struct {
	cfg     Config
	chains  []domain.ChainConfig
	clients ClientSource
	sinks   []Sink
	payTo   common.Address
	now     func() time.Time
	log     *slog.Logger

	mu      sync.Mutex
	cursors map[string]*Cursor
}

// NewWatcher creates a watcher over chains.
func NewWatcher(
	cfg Config,
	chains []domain.ChainConfig,
	clients ClientSource,
	log *slog.Logger,
	sinks ...Sink,
) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Lookback == 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if log == nil {
		log = slog.Default()
	}

	cursors := make(map[string]*Cursor, len(chains))
	for _, c := range chains {
		cursors[c.Key] = &Cursor{Chain: c.Key}
	}

	return &Watcher{
		cfg:     cfg,
		chains:  chains,
		clients: clients,
		sinks:   sinks,
		payTo:   common.HexToAddress(cfg.PayTo),
		now:     time.Now,
		log:     log.With("component", "revenue"),
		cursors: cursors,
	}
}

// Run starts one sequential tick loop per chain and blocks until ctx is
// done. Ticks already in flight finish before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, chain := range w.chains {
		g.Go(func() error {
			w.loop(ctx, chain)
			return nil
		})
	}
	w.log.Info("Revenue watcher started", "chains", len(w.chains), "interval", w.cfg.Interval)
	return g.Wait()
}

func (w *Watcher) loop(ctx context.Context, chain domain.ChainConfig) {
	// The period is measured from the end of each tick.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		w.observe(w.Tick(context.WithoutCancel(ctx), chain))
		timer.Reset(w.cfg.Interval)
	}
}

// Tick scans (cursor, latest] for one chain and advances the cursor.
func (w *Watcher) Tick(ctx context.Context, chain domain.ChainConfig) TickResult {
	res := TickResult{Chain: chain.Key}

	client, err := w.clients.Get(ctx, chain)
	if err != nil {
		res.Outcome, res.Err = TickFault, fmt.Errorf("client: %w", err)
		return res
	}
	latest, err := client.BlockNumber(ctx)
	if err != nil {
		res.Outcome, res.Err = TickFault, fmt.Errorf("block number: %w", err)
		return res
	}

	last, cold := w.cursorValue(chain.Key)
	if cold {
		last = saturatingSub(latest, w.cfg.Lookback)
	}
	res.From, res.To = last+1, latest

	if latest <= last {
		// Nothing new. A cold cursor is still initialised; a cursor ahead of
		// a lagging node is left where it is.
		if cold {
			w.setCursor(chain.Key, last)
		}
		res.From, res.To = last, last
		return res
	}

	token := common.HexToAddress(chain.Token.Address)
	threshold := price.ToBaseUnits(w.cfg.PriceUnits, chain.Token.Decimals)

	for start := last + 1; start <= latest; start += w.cfg.ChunkSize {
		end := min(start+w.cfg.ChunkSize-1, latest)

		logs, err := client.FilterLogs(ctx, evm.TransferQuery(token, w.payTo, start, end))
		if err != nil {
			res.SkippedChunks++
			res.Err = errors.Join(res.Err, fmt.Errorf("logs %d-%d: %w", start, end, err))
			w.log.Warn("Skipping block range",
				"chain", chain.Key, "from", start, "to", end, "error", err)
			continue
		}

		for _, l := range logs {
			ev, err := evm.DecodeTransfer(l)
			if err != nil {
				continue
			}
			if common.HexToAddress(ev.Contract) != token || common.HexToAddress(ev.To) != w.payTo {
				continue
			}
			if ev.Value.Cmp(threshold) < 0 {
				continue
			}
			w.record(ctx, chain, ev)
			res.Records++
		}
	}

	w.setCursor(chain.Key, latest)
	if res.SkippedChunks > 0 {
		res.Outcome = TickPartial
	}
	return res
}

// Cursor returns the last scanned block for chain.
func (w *Watcher) Cursor(chain string) (uint64, bool) {
	last, cold := w.cursorValue(chain)
	return last, !cold
}

func (w *Watcher) record(ctx context.Context, chain domain.ChainConfig, ev domain.TransferEvent) {
	rec := domain.RevenueRecord{
		Timestamp: w.now().UTC(),
		Chain:     chain.Key,
		Token:     chain.Token.Symbol,
		To:        ev.To,
		Value:     ev.Value.String(),
		TxHash:    ev.TxHash,
	}
	metrics.RevenueRecordsTotal.WithLabelValues(chain.Key).Inc()
	w.log.Info("Revenue observed",
		"chain", chain.Key,
		"tx", ev.TxHash,
		"block", ev.BlockNumber,
		"amount", price.FormatUnits(ev.Value, chain.Token.Decimals),
		"symbol", chain.Token.Symbol,
	)

	for _, s := range w.sinks {
		if err := s.Write(ctx, rec); err != nil {
			metrics.RevenueWriteErrorsTotal.WithLabelValues(s.Name()).Inc()
			w.log.Debug("Revenue sink write failed", "sink", s.Name(), "error", err)
		}
	}
}

func (w *Watcher) observe(res TickResult) {
	metrics.WatcherTicksTotal.WithLabelValues(res.Chain, res.Outcome.String()).Inc()

	switch res.Outcome {
	case TickFault:
		w.log.Error("Revenue tick failed", "chain", res.Chain, "error", res.Err)
		return
	case TickPartial:
		w.log.Warn("Revenue tick incomplete",
			"chain", res.Chain, "skipped", res.SkippedChunks, "records", res.Records)
	default:
		if res.Records == 0 {
			w.log.Debug("Revenue tick", "chain", res.Chain, "from", res.From, "to", res.To)
		}
	}
	if last, ok := w.Cursor(res.Chain); ok {
		metrics.WatcherCursorBlock.WithLabelValues(res.Chain).Set(float64(last))
	}
}

func (w *Watcher) cursorValue(chain string) (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.cursors[chain]
	if !ok || c.Last == nil {
		return 0, true
	}
	return *c.Last, false
}

func (w *Watcher) setCursor(chain string, last uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.cursors[chain]
	if !ok {
		c = &Cursor{Chain: chain}
		w.cursors[chain] = c
	}
	c.Last = &last
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
