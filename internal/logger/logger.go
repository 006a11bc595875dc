package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI color codes, disabled when stdout is not a terminal.
const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
	colorGray   = "\033[90m"
)

func useColor() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func paint(color, s string) string {
	if !useColor() {
		return s
	}
	return color + s + colorReset
}

// Banner prints the startup banner with the given version string.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(paint(colorBold+colorCyan, "OSRS Flipper"), paint(colorGray, version))
}

// Info logs an informational message under a component tag.
func Info(tag, msg string) {
	fmt.Printf("%s %s\n", paint(colorCyan, "["+tag+"]"), msg)
}

// Success logs a success message under a component tag.
func Success(tag, msg string) {
	fmt.Printf("%s %s\n", paint(colorGreen, "["+tag+"]"), msg)
}

// Warn logs a warning message under a component tag.
func Warn(tag, msg string) {
	fmt.Printf("%s %s\n", paint(colorYellow, "["+tag+"]"), msg)
}

// Error logs an error message under a component tag.
func Error(tag, msg string) {
	fmt.Printf("%s %s\n", paint(colorRed, "["+tag+"]"), msg)
}

// Section prints a visual section divider.
func Section(name string) {
	fmt.Printf("\n%s\n", paint(colorBold, "== "+name+" =="))
}

// Stats prints a single key/value statistic line.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s %v\n", paint(colorGray, key+":"), value)
}
