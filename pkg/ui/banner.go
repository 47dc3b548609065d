// Package ui renders PhishGuard output for the terminal: the banner, status
// lines, scan verdicts and history charts. Status output goes to stderr so
// stdout stays clean for piping.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/phishguard/phishguard/pkg/defaults"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	out         io.Writer = os.Stderr
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses status output).
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled.
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled.
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// SetOutput redirects status output. It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	uiMu.Lock()
	defer uiMu.Unlock()
	prev := out
	out = w
	return prev
}

// Output returns the status output writer.
func Output() io.Writer {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return out
}

const bannerArt = `
       __    _      __    ______                     __
  ____/ /_  (_)____/ /_  / ____/_  ______ __________/ /
 / __  / __ \/ / ___/ __ \/ / __/ / / / __ '/ ___/ __  / 
/ /_/ / / / / (__  ) / / / /_/ / /_/ / /_/ / /  / /_/ /  
\__,_/_/ /_/_/____/_/ /_/\____/\__,_/\__,_/_/   \__,_/   
`

// PrintBanner prints the application banner with version info.
func PrintBanner() {
	if IsSilent() {
		return
	}
	w := Output()
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "                    %s v%s\n\n", defaults.ProductName, VersionStyle.Render(defaults.Version))
}

// PrintDivider prints a stylized divider.
func PrintDivider() {
	fmt.Fprintln(Output(), DividerStyle.Render(strings.Repeat("-", 60)))
}

// PrintSection prints a section header.
func PrintSection(title string) {
	if IsSilent() {
		return
	}
	w := Output()
	fmt.Fprintln(w)
	fmt.Fprintln(w, SectionStyle.Render("> "+title))
	PrintDivider()
}

// PrintConfigLine prints a single config line.
func PrintConfigLine(key, value string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(Output(), "  %s %s\n",
		ConfigLabelStyle.Render(key+":"),
		ConfigValueStyle.Render(value),
	)
}

// PrintHelp prints contextual help.
func PrintHelp(text string) {
	fmt.Fprintln(Output(), HelpStyle.Render("  [i] "+text))
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	fmt.Fprintln(Output(), PassStyle.Render("  [+] "+message))
}

// PrintError prints an error message. Errors print even in silent mode.
func PrintError(message string) {
	fmt.Fprintln(Output(), FailStyle.Render("  [X] "+message))
}

// PrintWarning prints a warning message.
func PrintWarning(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(Output(), WarnStyle.Render("  [!] "+message))
}

// PrintInfo prints an info message.
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(Output(), "  %s %s\n", AnnounceStyle.Render("*"), message)
}
