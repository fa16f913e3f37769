package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/crossport/serial"
	"github.com/crossport/serial/internal/tui/components"
	"github.com/crossport/serial/internal/tui/keys"
	"github.com/crossport/serial/internal/tui/models"
	"github.com/crossport/serial/internal/tui/styles"
	"github.com/spf13/cobra"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect <port>",
	Short: "Connect to a serial port with bidirectional communication",
	Long: `Connect to a serial port with an interactive bidirectional terminal.

This command opens the specified serial port and provides an interactive terminal
with real-time bidirectional communication. Features include:
- Real-time data streaming with timestamps
- Input field for sending data (ASCII or hex)
- Follow and visual scrollback modes
- Connection status indicators
- Configurable baud rate and flow control
- Clean, responsive interface

Example usage:
  serialctl connect /dev/ttyUSB0
  serialctl connect /dev/ttyUSB0 --baud 9600
  serialctl connect /dev/ttyUSB0 --flow-control hardware --initial-rts`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		initialRTS, _ := cmd.Flags().GetBool("initial-rts")

		// Configure port options from persistent flags/config
		opts, err := portOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if initialRTS {
			opts = append(opts, serial.WithInitialRTS(true))
		}

		// Start the TUI
		if err := runConnectTUI(portPath, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().Bool("initial-rts", false, "Assert RTS on port open")
}

// connectModel represents the Bubble Tea model for the connect command
type connectModel struct {
	*models.SerialModel
	terminal  *components.TerminalTable
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.ConnectKeys
	width     int
}

func runConnectTUI(portPath string, opts ...serial.Option) error {
	// Create configuration from options to show in status bar
	config := serial.DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Create connection info for status bar
	connInfo := &components.ConnectionInfo{
		BaudRate:    config.BaudRate,
		DataBits:    config.DataBits,
		StopBits:    config.StopBits,
		Parity:      config.Parity,
		FlowControl: config.FlowControl,
	}

	// Create initial model with minimal dimensions - let WindowSizeMsg set proper size
	serialModel := models.NewSerialModel(portPath)
	m := connectModel{
		SerialModel: serialModel,
		terminal:    components.NewTerminalTable(0, 0), // Will be properly sized by WindowSizeMsg
		statusBar:   components.NewStatusBar("Serial Connect", portPath),
		input:       components.NewInput("Type message and press Enter to send..."),
		help:        help.New(),
		keys:        keys.NewConnectKeys(),
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetConnectionInfo(connInfo)

	// Start the TUI with alt screen and input handling
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Connect to serial port in background
	go func() {
		port, err := serial.Open(portPath, opts...)
		if err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}

		// Store port safely
		m.SetPort(port)

		p.Send(models.ConnectionStatusMsg{Connected: true, Error: nil})

		// Start reading data with context cancellation
		go func() {
			defer func() {
				// Only close the port when this goroutine exits
				if port != nil {
					port.Close()
				}
			}()

			buffer := make([]byte, 1024)
			for {
				select {
				case <-m.GetContext().Done():
					// Context was cancelled, exit cleanly
					return
				default:
					// Try to read data from the serial port
					n, err := port.ReadContext(m.GetContext(), buffer)
					if err != nil {
						// Check if it's a context cancellation
						if m.GetContext().Err() != nil {
							return // Context cancelled, exit cleanly
						}
						// For other errors, continue trying to read
						continue
					}
					if n > 0 {
						// Send raw data with timestamp - formatting will happen in Update method
						data := make([]byte, n)
						copy(data, buffer[:n])
						p.Send(components.DataReceivedMsg{
							Timestamp: time.Now(),
							Data:      data,
						})
					}
				}
			}
		}()
	}()

	_, err := p.Run()

	// Ensure cleanup
	m.Cancel()
	return err
}

func (m *connectModel) Init() tea.Cmd {
	return nil
}

// parseHexInput converts hex strings to bytes. Supports both:
// - Space-separated: "48 65 6C 6C 6F"
// - Continuous: "48656C6C6F"
func parseHexInput(hexStr string) ([]byte, error) {
	// Remove any spaces and convert to uppercase for consistency
	cleanHex := strings.ReplaceAll(strings.TrimSpace(hexStr), " ", "")
	if len(cleanHex) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	// Check if it's valid hex characters
	for _, char := range cleanHex {
		if !((char >= '0' && char <= '9') || (char >= 'A' && char <= 'F') || (char >= 'a' && char <= 'f')) {
			return nil, fmt.Errorf("invalid hex character '%c'", char)
		}
	}

	// Must be even number of hex digits to form complete bytes
	if len(cleanHex)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(cleanHex))
	}

	// Parse pairs of hex digits into bytes
	bytes := make([]byte, 0, len(cleanHex)/2)
	for i := 0; i < len(cleanHex); i += 2 {
		hexByte := cleanHex[i : i+2]
		b, err := strconv.ParseUint(hexByte, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		bytes = append(bytes, byte(b))
	}
	return bytes, nil
}

func (m *connectModel) sendInput() []tea.Cmd {
	var cmds []tea.Cmd

	port := m.GetPort()
	if m.input.Value() == "" || port == nil {
		return cmds
	}

	inputStr := m.input.Value()
	var dataToSend []byte
	var displayData []byte
	var err error

	switch m.input.GetSendingMode() {
	case components.SendingModeASCII:
		dataToSend = []byte(inputStr + "\n")
		displayData = []byte(inputStr)
	case components.SendingModeHex:
		dataToSend, err = parseHexInput(inputStr)
		if err != nil {
			// Show error in terminal but don't send anything
			m.terminal.AddMessage(components.DataReceivedMsg{
				Timestamp: time.Now(),
				Data:      []byte(fmt.Sprintf("Invalid hex input: %v", err)),
				IsTX:      false,
			})
			return cmds
		}
		displayData = dataToSend
	}

	// Send the data with proper timeout handling and status updates
	writeStatusCh := make(chan error, 1)
	transmittingStatusCh := make(chan bool, 1)

	go func(port serial.Port, dataToSend []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Signal that we're about to start writing (may block on flow control)
		transmittingStatusCh <- true

		_, err := port.WriteContext(ctx, dataToSend)
		writeStatusCh <- err
		close(writeStatusCh)
	}(port, dataToSend)

	// Return commands for both status updates
	cmds = append(cmds, func() tea.Msg {
		// Wait for write to start - show TRANSMITTING status
		<-transmittingStatusCh
		return components.DataReceivedMsg{
			Timestamp: time.Now(),
			Data:      displayData,
			IsTX:      true,
			Status:    "TRANSMITTING",
		}
	})

	cmds = append(cmds, func() tea.Msg {
		err := <-writeStatusCh
		// Send completion status
		finalStatus := components.DataReceivedMsg{
			Timestamp: time.Now(),
			Data:      displayData,
			IsTX:      true,
		}
		if err != nil {
			finalStatus.Status = "ERROR"
		} else {
			finalStatus.Status = "WRITTEN"
		}
		return finalStatus
	})

	// Add to display with TX prefix (initially as PENDING)
	txData := components.DataReceivedMsg{
		Timestamp: time.Now(),
		Data:      displayData,
		IsTX:      true,
		Status:    "PENDING",
	}
	// Add to both raw data store and terminal display
	m.AddRawData(txData)
	m.terminal.AddMessage(txData)

	// Add to history before clearing
	m.input.AddToHistory(inputStr)
	m.input.SetValue("")

	return cmds
}

func (m *connectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Input area height (includes border)
		inputHeight := 3
		// Status bar is single line
		statusBarHeight := 1
		verticalMarginHeight := inputHeight + statusBarHeight

		m.width = msg.Width
		m.terminal.SetSize(msg.Width, msg.Height-verticalMarginHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else {
			m.statusBar.SetConnected()
		}

	case components.DataReceivedMsg:
		// Only process data if we're ready (WindowSizeMsg has been received)
		if m.IsReady() {
			m.AddRawData(msg)
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		// Handle mode-specific keys
		if m.IsInInsertMode() {
			// Insert mode - handle input and escape
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				cmds = append(cmds, m.sendInput()...)
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, tea.Batch(cmds...)
			}
		} else {
			// Normal mode - handle navigation and mode switching
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.terminal.SetViewMode(components.ViewModeFollow)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.VisualMode):
				m.terminal.SetViewMode(components.ViewModeVisual)

			case key.Matches(msg, m.keys.Escape):
				m.terminal.SetViewMode(components.ViewModeFollow)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.terminal.ToggleHex()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleASCII):
				m.terminal.ToggleASCII()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleTimestamps):
				m.terminal.ToggleTimestamps()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleIndicators):
				m.terminal.ToggleIndicators()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
			}
		}
	}

	// Update components (only update input in insert mode)
	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		// Table handles scrollback navigation in visual mode
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *connectModel) View() string {
	// Main content (no header now)
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		// Show initializing message in a consistent format
		content = "Initializing..."
	}

	// Input area
	inputMode := m.GetInputMode().String()
	isInsertMode := m.IsInInsertMode()
	input := m.input.ViewWithMode(inputMode, isInsertMode)

	// Comprehensive status bar with all info
	sendingMode := m.input.GetSendingMode().String()
	viewMode := m.terminal.GetViewModeString()
	timestamp := time.Now().Format("15:04:05")

	// Set the status bar width to match terminal
	terminalWidth := m.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}
	m.statusBar.SetWidth(terminalWidth)

	statusBar := m.statusBar.ComprehensiveStatusBar(inputMode, sendingMode, viewMode, m.IsConnected(), timestamp)

	// Layout without header, with comprehensive status bar at bottom
	contentWithBorder := styles.ContentBorderStyle.Render(content)

	// Show help if requested
	if m.help.ShowAll {
		helpView := m.help.View(m.keys)
		helpStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Margin(1, 0)

		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpStyle.Render(helpView),
			input,
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		input,
		statusBar,
	)
}
