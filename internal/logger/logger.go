package logger

import (
	"io"
	"os"
	"time"

	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"
)

// Options configures the process logger.
type Options struct {
	// Level is a zerolog level name (trace, debug, info, warn, error, fatal, panic).
	Level string
	// Format is "pretty" for console output or anything else for JSON lines.
	Format string
	// Service is attached to every event.
	Service string
	// RollbarToken enables forwarding of error events when set.
	RollbarToken string
	Environment  string
}

// Setup builds the logger used by a binary and sets the global level.
func Setup(opts Options) zerolog.Logger {
	var writer io.Writer = os.Stdout
	if opts.Format == "pretty" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "02/01 15:04:05"}
	}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(writer).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	log := ctx.Caller().Logger()

	if opts.RollbarToken != "" {
		rollbar.SetToken(opts.RollbarToken)
		rollbar.SetEnvironment(opts.Environment)
		rollbar.SetServerRoot("github.com/ifb/ocorrencias-backend")
		log = log.Hook(rollbarHook{})
	}
	return log
}

// rollbarHook forwards error-level events to Rollbar.
type rollbarHook struct{}

func (rollbarHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if msg == "" {
		return
	}
	switch level {
	case zerolog.ErrorLevel:
		rollbar.Error(msg)
	case zerolog.FatalLevel, zerolog.PanicLevel:
		rollbar.Critical(msg)
		rollbar.Wait()
	}
}

// Flush waits for pending Rollbar items. Safe to call when Rollbar is disabled.
func Flush() {
	rollbar.Wait()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
