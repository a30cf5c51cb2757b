package logger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	colorRed    = 31
	colorGreen  = 32
	colorYellow = 33
	colorBold   = 1
)

func colorize(s interface{}, c int, disabled bool) string {
	if disabled {
		return fmt.Sprintf("%s", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

func consoleFormatLevel(noColor bool) zerolog.Formatter {
	return func(i interface{}) string {
		ll, ok := i.(string)
		if !ok {
			return colorize("???", colorBold, noColor)
		}
		switch strings.ToLower(ll) {
		case "debug":
			return colorize("DBG", colorYellow, noColor)
		case "info":
			return colorize("INF", colorGreen, noColor)
		case "warn":
			return colorize("WRN", colorRed, noColor)
		case "error":
			return colorize(colorize("ERR", colorRed, noColor), colorBold, noColor)
		case "fatal", "panic":
			return colorize(colorize("FTL", colorRed, noColor), colorBold, noColor)
		default:
			return colorize("???", colorBold, noColor)
		}
	}
}
