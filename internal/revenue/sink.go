package revenue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vietddude/paygate/internal/core/domain"
)

// LogFileName is the revenue log inside the configured directory.
const LogFileName = "revenue.jsonl"

// Sink persists revenue records. Failures are reported to the caller,
// which decides whether to swallow them.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec domain.RevenueRecord) error
}

// FileSink appends records to a newline-delimited JSON file.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to <dir>/revenue.jsonl. The directory
// is created on first write.
func NewFileSink(dir string) *FileSink {
	return &FileSink{path: filepath.Join(dir, LogFileName)}
}

func (s *FileSink) Name() string { return "file" }

// Path returns the file the sink appends to.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Write(_ context.Context, rec domain.RevenueRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode revenue record: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create revenue dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open revenue log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append revenue log: %w", err)
	}
	return nil
}
