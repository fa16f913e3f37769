package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/crossport/serial/internal/tui/colors"
)

type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
	Status    string // For TX messages: "PENDING", "TRANSMITTING", "WRITTEN", "ERROR", empty for RX
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
	ShowIndicators bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:        showHex,
			ShowASCII:      showASCII,
			ShowTimestamps: true,
			ShowIndicators: true,
		},
	}
}

func (df *DataFormatter) SetDisplayMode(showHex, showASCII bool) {
	df.mode.ShowHex = showHex
	df.mode.ShowASCII = showASCII
}

// SetFormatOptions controls the timestamp and direction-indicator columns.
func (df *DataFormatter) SetFormatOptions(showTimestamps, showIndicators bool) {
	df.mode.ShowTimestamps = showTimestamps
	df.mode.ShowIndicators = showIndicators
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	var prefix []string

	if df.mode.ShowTimestamps {
		timestamp := msg.Timestamp.Format("15:04:05.000")
		prefix = append(prefix, lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Render(fmt.Sprintf("[%s]", timestamp)))
	}

	if df.mode.ShowIndicators {
		prefix = append(prefix, df.formatIndicator(msg))
	}

	var parts []string

	if df.mode.ShowHex {
		hexStr := fmt.Sprintf("% X", msg.Data)
		parts = append(parts, fmt.Sprintf("HEX: %s", hexStr))
	}

	if df.mode.ShowASCII {
		asciiStr := ""
		for _, b := range msg.Data {
			if b >= 32 && b <= 126 {
				// Only include printable ASCII characters
				asciiStr += string(b)
			} else {
				// Replace non-printable characters with dots
				asciiStr += "."
			}
		}
		if df.mode.ShowHex || df.mode.ShowTimestamps || df.mode.ShowIndicators {
			parts = append(parts, fmt.Sprintf("ASCII: %s", asciiStr))
		} else {
			// Raw-ish output when everything else is hidden
			parts = append(parts, asciiStr)
		}
	}

	// If both are disabled, show raw bytes count
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}

	body := strings.Join(parts, "  ")
	if len(prefix) == 0 {
		return body
	}
	return fmt.Sprintf("%s %s", strings.Join(prefix, " "), body)
}

func (df *DataFormatter) formatIndicator(msg DataReceivedMsg) string {
	if msg.IsTX {
		// TX with up-right arrow and status-based coloring
		var txColor lipgloss.Color
		var statusText string

		switch msg.Status {
		case "PENDING":
			txColor = colors.Yellow
			statusText = "TX ○"
		case "TRANSMITTING":
			txColor = colors.Blue
			statusText = "TX ⏸"
		case "WRITTEN":
			txColor = colors.Green
			statusText = "TX ✓"
		case "ERROR":
			txColor = colors.Red
			statusText = "TX ✗"
		default:
			txColor = colors.Peach
			statusText = "TX"
		}

		return lipgloss.NewStyle().
			Foreground(txColor).
			Bold(true).
			Render("↗ " + statusText + ":")
	}

	// RX with down-left arrow
	return lipgloss.NewStyle().
		Foreground(colors.Sky).
		Bold(true).
		Render("↙ RX:")
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.ShowTimestamps = !df.mode.ShowTimestamps
}

func (df *DataFormatter) ToggleIndicators() {
	df.mode.ShowIndicators = !df.mode.ShowIndicators
}
