// Package color styles CLI diagnostics using termenv color profiles.
package color

import (
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ANSI color indices
const (
	Red     = "1"
	Green   = "2"
	Yellow  = "3"
	Blue    = "4"
	Magenta = "5"
	Cyan    = "6"
	White   = "7"
	Gray    = "8"

	BrightRed     = "9"
	BrightGreen   = "10"
	BrightYellow  = "11"
	BrightBlue    = "12"
	BrightMagenta = "13"
	BrightCyan    = "14"
	BrightWhite   = "15"
)

var profile = termenv.NewOutput(os.Stderr).EnvColorProfile()

// EnableColor switches styling on or off. Enabling it ignores the terminal
// detection done at startup.
func EnableColor(enable bool) {
	if enable {
		profile = termenv.ANSI256
		return
	}

	profile = termenv.Ascii
}

func IsColorEnabled() bool {
	return profile != termenv.Ascii
}

// Colorize renders text in the given foreground color
func Colorize(color, text string) string {
	return profile.String(text).Foreground(profile.Color(color)).String()
}

func RedText(text string) string {
	return Colorize(Red, text)
}

func BrightRedText(text string) string {
	return Colorize(BrightRed, text)
}

func GreenText(text string) string {
	return Colorize(Green, text)
}

func YellowText(text string) string {
	return Colorize(Yellow, text)
}

func BlueText(text string) string {
	return Colorize(Blue, text)
}

func CyanText(text string) string {
	return Colorize(Cyan, text)
}

func GrayText(text string) string {
	return Colorize(Gray, text)
}

func BoldText(text string) string {
	return profile.String(text).Bold().String()
}

func Error(message string) string {
	return BrightRedText(BoldText("Error: ")) + message
}

func Success(message string) string {
	return GreenText("Success: ") + message
}

func Position(line, col int) string {
	return CyanText(fmt.Sprintf("%d:%d", line, col))
}

// ErrorWithPosition formats an error at a source position followed by the
// offending source line
func ErrorWithPosition(line, col int, message, context string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s at %s: %s", BrightRedText(BoldText("Error")), Position(line, col), message)
	if context != "" {
		sb.WriteString("\n")
		sb.WriteString(GrayText(context))
		if col > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", col-1) + RedText("^"))
		}
	}

	return sb.String()
}
