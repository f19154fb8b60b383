package antivirus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	base := ScanResult{ScannerName: "clamav"}

	t.Run("clean", func(t *testing.T) {
		r := parseReply(base, "stream: OK")
		assert.False(t, r.Infected)
		assert.NoError(t, r.Error)
	})

	t.Run("found", func(t *testing.T) {
		r := parseReply(base, "stream: Eicar-Test-Signature FOUND")
		assert.True(t, r.Infected)
		assert.Equal(t, "Eicar-Test-Signature", r.ThreatName)
		assert.NoError(t, r.Error)
	})

	t.Run("scanner error", func(t *testing.T) {
		r := parseReply(base, "INSTREAM size limit exceeded. ERROR")
		assert.True(t, r.Infected)
		assert.Empty(t, r.ThreatName)
		require.Error(t, r.Error)
	})

	t.Run("garbage", func(t *testing.T) {
		r := parseReply(base, "")
		assert.True(t, r.Infected)
		assert.Error(t, r.Error)
	})
}

func TestClamAVUnreachable(t *testing.T) {
	// port 1 on loopback is never a clamd
	scanner := NewClamAVScanner("127.0.0.1:1", 200*time.Millisecond)

	assert.False(t, scanner.Available(context.Background()))
	r := ScanBytes(context.Background(), scanner, "a.csv", []byte("name"))
	assert.True(t, r.Infected)
	assert.Empty(t, r.ThreatName)
	assert.Error(t, r.Error)
}

func TestNoOpScanner(t *testing.T) {
	r := ScanBytes(context.Background(), NewNoOpScanner(), "a.csv", []byte("x"))
	assert.False(t, r.Infected)
	assert.Equal(t, "noop", r.ScannerName)
}
