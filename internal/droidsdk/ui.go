package droidsdk

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
)

// Global variables
var (
	Debug      bool
	ConfigFile = "/etc/droidsdk.conf"
	version    = "dev"     // overridden at build time
	buildDate  = "unknown" // overridden at build time
)

// color helpers
var (
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
	colNote    = color.Tag("notice")
)

// step prints an "-> message" progress line.
func step(format string, a ...any) {
	colArrow.Print("-> ")
	colSuccess.Printf(format+"\n", a...)
}

// progressWriter receives progress and debug output. It is stderr so that
// stdout of `droidsdk locate` is just the path.
var progressWriter io.Writer = os.Stderr

// debugf prints debug messages when Debug is true
func debugf(format string, args ...any) {
	if Debug {
		fmt.Fprintf(progressWriter, format, args...)
	}
}
