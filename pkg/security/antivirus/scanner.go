package antivirus

import (
	"bytes"
	"context"
	"io"
)

type ScanResult struct {
	Infected    bool
	ThreatName  string // empty when clean or when the scan itself failed
	ScannerName string
	Error       error
}

// Scanner checks uploads before they are parsed. Detection rejects the
// upload; there is no quarantine.
type Scanner interface {
	// Scan reports Infected=true on detection and on any scan error.
	Scan(ctx context.Context, filename string, data io.Reader) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// ScanBytes is a convenience for uploads already held in memory.
func ScanBytes(ctx context.Context, s Scanner, filename string, data []byte) ScanResult {
	return s.Scan(ctx, filename, bytes.NewReader(data))
}

// NoOpScanner always reports clean. Used when no clamd address is configured.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}

func (n *NoOpScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	return ScanResult{ScannerName: n.Name()}
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

func (n *NoOpScanner) Available(ctx context.Context) bool {
	return true
}
