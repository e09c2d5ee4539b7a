// Package logging provides the process-wide structured logger.
//
// Output is logfmt on stderr. Stdout is reserved for the MCP protocol stream
// and for CLI results, so nothing in this package ever writes there.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp      = "app"
	SourceMCP      = "mcp"
	SourcePipeline = "pipeline"
	SourceOCR      = "ocr"
)

var (
	initOnce   sync.Once
	mu         sync.Mutex
	baseLogger *log.Logger
)

// Init configures the base logger and stdlib log output.
func Init() {
	initOnce.Do(func() {
		baseLogger = log.NewWithOptions(os.Stderr, log.Options{
			TimeFunction:    log.NowUTC,
			TimeFormat:      time.RFC3339Nano,
			Level:           log.InfoLevel,
			ReportTimestamp: true,
			Formatter:       log.LogfmtFormatter,
		})

		stdLogger := baseLogger.With("source", SourceApp).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})

		stdlog.SetFlags(0)
		stdlog.SetOutput(stdLogger.Writer())
	})
}

// SetLevel parses level ("debug", "info", "warn", "error") and applies it to
// the base logger. Loggers obtained earlier keep the level they were created
// with, so call this before handing out loggers.
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Init()
	mu.Lock()
	defer mu.Unlock()
	baseLogger.SetLevel(lvl)
	return nil
}

// SetOutput redirects the base logger. Tests use it to capture output.
func SetOutput(w io.Writer) {
	Init()
	mu.Lock()
	defer mu.Unlock()
	baseLogger.SetOutput(w)
}

// Logger returns a logfmt logger tagged with the provided source.
func Logger(source string) *log.Logger {
	Init()
	mu.Lock()
	defer mu.Unlock()
	return baseLogger.With("source", source)
}

