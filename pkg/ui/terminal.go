package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Banner is printed by commands that talk to the user interactively
const Banner = `
    ╔════════════════════════════════════════════════╗
    ║   I G A N A L Y T I C S                        ║
    ║   Instagram Graph API account analytics        ║
    ╚════════════════════════════════════════════════╝
`

var (
	mu           sync.RWMutex
	out          io.Writer = os.Stdout
	colorEnabled           = true
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// SetOutput redirects every Print function to w
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetColorEnabled turns ANSI colors on or off
func SetColorEnabled(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	colorEnabled = enabled
}

// ColorEnabled reports whether ANSI colors are emitted
func ColorEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return colorEnabled
}

// Output returns the writer the Print functions use
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// colorize returns a function that wraps text with ANSI color codes
// while colors are enabled
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !ColorEnabled() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintBanner prints the banner in cyan
func PrintBanner() {
	fmt.Fprint(Output(), Cyan(Banner))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output(), Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output(), Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output(), Green(msg))
}

// PrintInfo prints a label and value pair
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output(), "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output(), Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output(), Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output(), Magenta(msg))
}
