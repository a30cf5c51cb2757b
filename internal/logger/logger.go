// Package logger holds the process-wide zerolog logger used by the transport
// engine and the tehmc command.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

const DurationFieldName = "dur"

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	SetConsoleWriter()
}

func Log() *zerolog.Logger {
	return &log
}

func SetConsoleWriter() {
	log = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.FormatLevel = consoleFormatLevel(false)
		w.TimeFormat = "15:04:05.000"
	})).With().Timestamp().Logger()
}

func SetJSONWriter() {
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func SetWriter(w io.Writer) {
	log = zerolog.New(w)
}

// SetFormat selects "json" or "console" output.
func SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "console":
		SetConsoleWriter()
	case "json":
		SetJSONWriter()
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// SetDebug switches the global level between debug and info.
func SetDebug(on bool) {
	if on {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func Debug(msg string, kv ...interface{}) { emit(log.Debug(), msg, kv) }
func Info(msg string, kv ...interface{})  { emit(log.Info(), msg, kv) }
func Warn(msg string, kv ...interface{})  { emit(log.Warn(), msg, kv) }

func Error(err error, msg string, kv ...interface{}) {
	emit(log.Error().Err(err), msg, kv)
}

// Debugf is the printf-style form used by hot-path debug tracing.
func Debugf(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

// emit appends alternating key/value pairs to the event.
func emit(event *zerolog.Event, msg string, kv []interface{}) {
	if event == nil {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprintf("%v", kv[i])
		}
		switch v := kv[i+1].(type) {
		case string:
			event.Str(k, v)
		case int:
			event.Int(k, v)
		case int64:
			event.Int64(k, v)
		case uint64:
			event.Uint64(k, v)
		case float64:
			event.Float64(k, v)
		case bool:
			event.Bool(k, v)
		case error:
			event.AnErr(k, v)
		case time.Duration:
			event.Str(k, v.String())
		default:
			event.Interface(k, v)
		}
	}
	event.Msg(msg)
}
