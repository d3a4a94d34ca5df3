// Package logging prints leveled log lines through the standard logger, with the level tag
// colored for terminals.
package logging

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/logrusorgru/aurora"
)

var au atomic.Value

func init() {
	au.Store(aurora.NewAurora(true))
}

// SetColors toggles ANSI colors, e.g. off when output is redirected to a file.
func SetColors(enabled bool) {
	au.Store(aurora.NewAurora(enabled))
}

// Colors returns the current colorizer, for callers printing their own colored output.
func Colors() aurora.Aurora {
	return au.Load().(aurora.Aurora)
}

// Infof logs an info message.
func Infof(format string, args ...any) {
	log.Printf("%s %s", Colors().Green("INFO"), fmt.Sprintf(format, args...))
}

// Warnf logs a warning message.
func Warnf(format string, args ...any) {
	log.Printf("%s %s", Colors().Yellow("WARN"), fmt.Sprintf(format, args...))
}

// Errorf logs an error message.
func Errorf(format string, args ...any) {
	log.Printf("%s %s", Colors().Red("ERROR"), fmt.Sprintf(format, args...))
}

// Highlightf logs a highlighted message.
func Highlightf(format string, args ...any) {
	log.Printf("%s %s", Colors().Blue("NOTE"), fmt.Sprintf(format, args...))
}
