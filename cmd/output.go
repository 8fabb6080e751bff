package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// All commands use these functions to ensure consistent icon usage and
// indentation throughout minirag's CLI output.
//
// Icon semantics:
//   ✓  success / healthy
//   ✗  error / failure          (written to stderr)
//   ⚠  warning
//   ○  skipped / not applicable
//   -  not found / missing
//   ~  neutral info / state change

var (
	okIcon   = color.New(color.FgGreen).Sprint("✓")
	errIcon  = color.New(color.FgRed).Sprint("✗")
	warnIcon = color.New(color.FgYellow).Sprint("⚠")
	skipIcon = color.New(color.Faint).Sprint("○")
	missIcon = color.New(color.Faint).Sprint("-")
	infoIcon = color.New(color.FgCyan).Sprint("~")

	bold = color.New(color.Bold).SprintFunc()
)

// printSection prints a top-level section header, e.g. "=== Index ===".
func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", bold(title))
}

// printBullet prints a grouped-section bullet, e.g. "● Sources:".
func printBullet(title string) {
	fmt.Printf("\n● %s\n", title)
}

func printLine(w *os.File, icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(w, "  %s  [%s] %s\n", icon, name, msg)
	}
}

// printOK prints a success line.
//
//	name = "" → "  ✓  msg"
//	name set  → "  ✓  [name] msg"
func printOK(name, msg string) { printLine(os.Stdout, okIcon, name, msg) }

// printErr prints an error line to stderr.
func printErr(name, msg string) { printLine(os.Stderr, errIcon, name, msg) }

// printWarn prints a warning line.
func printWarn(name, msg string) { printLine(os.Stdout, warnIcon, name, msg) }

// printSkip prints a skipped / not-applicable line.
func printSkip(name, msg string) { printLine(os.Stdout, skipIcon, name, msg) }

// printMiss prints a not-found / missing line.
func printMiss(name, msg string) { printLine(os.Stdout, missIcon, name, msg) }

// printInfo prints a neutral informational / state-change line.
func printInfo(name, msg string) { printLine(os.Stdout, infoIcon, name, msg) }
