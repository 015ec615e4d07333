package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vnykmshr/fanout/internal/testutil"
)

func TestLoggerSharedWriterAcrossDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, "info", "logfmt")
	derived := base.With("executor", "shared")

	const perLogger = 200
	var wg sync.WaitGroup
	for _, l := range []interface{ Info(string, ...any) }{base, derived} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perLogger; i++ {
				l.Info("tick", "i", i)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	testutil.AssertEqual(t, len(lines), 2*perLogger)

	var fromDerived int
	for _, line := range lines {
		if !strings.Contains(line, "msg=tick") {
			t.Fatalf("interleaved log line: %q", line)
		}
		if strings.Contains(line, "executor=shared") {
			fromDerived++
		}
	}
	testutil.AssertEqual(t, fromDerived, perLogger)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warning": log.WarnLevel,
		"warn":    log.WarnLevel,
		"error":   log.ErrorLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range tests {
		testutil.AssertEqual(t, parseLogLevel(in), want)
	}
}
