//go:build windows

package serial

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/windows"
)

// Slack added to the event wait on reads so the driver-side timeout
// completes the operation before we resort to CancelIoEx.
const readWaitSlack = 100 * time.Millisecond

// port is the Windows implementation of the Port interface. The handle is
// opened with FILE_FLAG_OVERLAPPED; every read and write is a pending
// overlapped operation carrying its own event object, so a timed-out
// operation can be cancelled and confirmed without leaving anything
// in flight against a buffer the caller has taken back.
type port struct {
	mu     sync.RWMutex
	handle windows.Handle
	device string
	config Config
	state  atomic.Int32

	// Win32 cannot read the output lines back, so the last commanded
	// DTR/RTS states are tracked here.
	dtr bool
	rts bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

func nativeOpen(device string, config Config) (*port, error) {
	path := device
	if len(path) > 0 && path[0] != '\\' {
		path = `\\.\` + path
	}
	pathp, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	// Share mode 0 gives exclusive access; a second open fails with
	// ERROR_ACCESS_DENIED.
	handle, err := windows.CreateFile(
		pathp,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		return nil, translateOpenError(err)
	}

	if err := setupComm(handle, 4096, 4096); err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("failed to size comm buffers: %w", err)
	}

	dtr, rts, err := applyCommState(handle, config)
	if err != nil {
		windows.CloseHandle(handle)
		return nil, err
	}
	if err := applyCommTimeouts(handle, config); err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("failed to set comm timeouts: %w", err)
	}

	p := &port{handle: handle, device: device, config: config, dtr: dtr, rts: rts}
	p.state.Store(int32(stateReady))
	return p, nil
}

// translateOpenError maps CreateFile errors into the portable taxonomy.
func translateOpenError(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND),
		errors.Is(err, windows.ERROR_PATH_NOT_FOUND):
		return ErrDeviceNotFound
	case errors.Is(err, windows.ERROR_ACCESS_DENIED),
		errors.Is(err, windows.ERROR_SHARING_VIOLATION):
		// CreateFile reports a busy COM port as access denied.
		return ErrDeviceInUse
	}
	return err
}

// applyCommState pushes the full line configuration in one SetCommState
// call. The existing fDtrControl/fRtsControl bits are preserved unless the
// caller asked for an initial state or hardware flow control, so opening a
// port never glitches the modem lines. Returns the resulting DTR/RTS
// states for the port's shadows.
func applyCommState(handle windows.Handle, config Config) (bool, bool, error) {
	if err := validateBaudRate(config.BaudRate); err != nil {
		return false, false, err
	}

	var d dcb
	if err := getCommState(handle, &d); err != nil {
		return false, false, fmt.Errorf("failed to get comm state: %w", err)
	}

	dtrBits := d.Flags & dcbfDTRControl
	rtsBits := d.Flags & dcbfRTSControl

	d.Flags &^= dcbfOutxCTSFlow | dcbfOutxDSRFlow | dcbfDSRSensitivity |
		dcbfTXContinueOnXoff | dcbfOutX | dcbfInX | dcbfErrorChar |
		dcbfNull | dcbfAbortOnError | dcbfDTRControl | dcbfRTSControl | dcbfParity
	d.Flags |= dcbfBinary

	if config.InitialDTR != nil {
		dtrBits = dtrControlDisable
		if *config.InitialDTR {
			dtrBits = dtrControlEnable
		}
	}
	if config.InitialRTS != nil {
		rtsBits = rtsControlDisable
		if *config.InitialRTS {
			rtsBits = rtsControlEnable
		}
	}

	switch config.FlowControl {
	case FlowControlSoftware:
		d.Flags |= dcbfOutX | dcbfInX
		d.XonChar = xonChar
		d.XoffChar = xoffChar
		d.XonLim = 2048
		d.XoffLim = 512
	case FlowControlHardware:
		d.Flags |= dcbfOutxCTSFlow
		rtsBits = rtsControlHandshake
	}
	d.Flags |= dtrBits | rtsBits

	d.BaudRate = uint32(config.BaudRate)
	d.ByteSize = uint8(config.DataBits)

	switch config.StopBits {
	case StopBits1:
		d.StopBits = oneStopBit
	case StopBits1Half:
		d.StopBits = one5StopBits
	case StopBits2:
		d.StopBits = twoStopBits
	}

	switch config.Parity {
	case ParityNone:
		d.Parity = noParity
	case ParityOdd:
		d.Parity = oddParity
		d.Flags |= dcbfParity
	case ParityEven:
		d.Parity = evenParity
		d.Flags |= dcbfParity
	case ParityMark:
		d.Parity = markParity
		d.Flags |= dcbfParity
	case ParitySpace:
		d.Parity = spaceParity
		d.Flags |= dcbfParity
	}

	if err := setCommState(handle, &d); err != nil {
		return false, false, fmt.Errorf("failed to set comm state: %w", err)
	}

	dtr := dtrBits == dtrControlEnable
	rts := rtsBits == rtsControlEnable || rtsBits == rtsControlHandshake
	return dtr, rts, nil
}

// windowsBaudRates is the set of rates the driver interface documents.
// Anything else fails validation; rates are never silently rounded.
var windowsBaudRates = map[int]bool{
	110: true, 300: true, 600: true, 1200: true, 2400: true, 4800: true,
	9600: true, 14400: true, 19200: true, 38400: true, 57600: true,
	115200: true, 128000: true, 230400: true, 256000: true,
	460800: true, 921600: true,
}

func validateBaudRate(baudRate int) error {
	if !windowsBaudRates[baudRate] {
		return fmt.Errorf("%w: %d", ErrUnsupportedBaudRate, baudRate)
	}
	return nil
}

// applyCommTimeouts configures the driver-side read behavior:
// return as soon as at least one byte is available, otherwise complete
// with zero bytes when the timeout elapses. Write deadlines are enforced
// with the event wait and CancelIoEx instead, so the driver write
// timeouts stay disabled.
func applyCommTimeouts(handle windows.Handle, config Config) error {
	timeouts := windows.CommTimeouts{
		ReadIntervalTimeout:         maxDWORD,
		ReadTotalTimeoutMultiplier:  maxDWORD,
		WriteTotalTimeoutMultiplier: 0,
		WriteTotalTimeoutConstant:   0,
	}
	switch {
	case config.ReadTimeout == NoTimeout:
		timeouts.ReadTotalTimeoutConstant = maxDWORD - 1
	case config.ReadTimeout == 0:
		// Immediate mode: return whatever is queued, possibly nothing.
		timeouts.ReadTotalTimeoutMultiplier = 0
		timeouts.ReadTotalTimeoutConstant = 0
	default:
		timeouts.ReadTotalTimeoutConstant = timeoutMillis(config.ReadTimeout)
	}
	return windows.SetCommTimeouts(handle, &timeouts)
}

func timeoutMillis(timeout time.Duration) uint32 {
	ms := timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	if ms > maxDWORD-2 {
		ms = maxDWORD - 2
	}
	return uint32(ms)
}

// stateErr reports why the port cannot accept an operation, or nil.
func (p *port) stateErr() error {
	switch portState(p.state.Load()) {
	case stateReady:
		return nil
	case stateError:
		return ErrInvalidState
	default:
		return ErrPortClosed
	}
}

// fault marks the port unusable and translates the backend error.
func (p *port) fault(err error) error {
	p.state.CompareAndSwap(int32(stateReady), int32(stateError))
	if errors.Is(err, windows.ERROR_ACCESS_DENIED) ||
		errors.Is(err, windows.ERROR_BAD_COMMAND) ||
		errors.Is(err, windows.ERROR_DEVICE_NOT_CONNECTED) {
		return ErrDeviceDisconnected
	}
	return fmt.Errorf("serial I/O error on %s: %w", p.device, err)
}

// deadlineFor converts a configured timeout into an absolute deadline.
// The zero time means block forever.
func deadlineFor(timeout time.Duration) time.Time {
	if timeout == NoTimeout {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

func expired(deadline time.Time) bool {
	return !deadline.IsZero() && !time.Now().Before(deadline)
}

func waitMillis(deadline time.Time) uint32 {
	if deadline.IsZero() {
		return windows.INFINITE
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0
	}
	return timeoutMillis(remaining)
}

// overlappedOp is one pending overlapped operation. It owns the event
// object referenced by the OVERLAPPED structure and must be released on
// every exit path; the event is manual-reset as the overlapped contract
// requires.
type overlappedOp struct {
	ov    windows.Overlapped
	event windows.Handle
}

func newOverlappedOp() (*overlappedOp, error) {
	event, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, err
	}
	op := &overlappedOp{event: event}
	op.ov.HEvent = event
	return op, nil
}

func (op *overlappedOp) close() {
	windows.CloseHandle(op.event)
}

// complete waits for the operation to finish, cancelling it when the
// deadline expires. A cancelled operation still yields its transferred
// byte count; that partial progress is returned with a nil error, the
// same zero-progress convention the POSIX backend uses.
func (p *port) complete(op *overlappedOp, deadline time.Time, ctx context.Context) (int, error) {
	for {
		wait := waitMillis(deadline)
		if ctx != nil {
			quantum := timeoutMillis(pollQuantum)
			if wait > quantum {
				wait = quantum
			}
		}
		ev, err := windows.WaitForSingleObject(op.event, wait)
		if err != nil {
			return p.collect(op, err)
		}
		if ev == uint32(windows.WAIT_OBJECT_0) {
			return p.collect(op, nil)
		}
		if ctx != nil && ctx.Err() != nil {
			windows.CancelIoEx(p.handle, &op.ov)
			n, _ := p.collect(op, nil)
			return n, ctx.Err()
		}
		if expired(deadline) {
			// Cancel, then confirm: the op may have completed between
			// the wait and the cancel, and its count still matters.
			windows.CancelIoEx(p.handle, &op.ov)
			return p.collect(op, nil)
		}
	}
}

// collect retrieves the final transfer count. ERROR_OPERATION_ABORTED is
// the expected result of a deadline cancel and is not an error.
func (p *port) collect(op *overlappedOp, waitErr error) (int, error) {
	var done uint32
	err := windows.GetOverlappedResult(p.handle, &op.ov, &done, true)
	if waitErr != nil {
		return int(done), p.fault(waitErr)
	}
	if err != nil {
		if errors.Is(err, windows.ERROR_OPERATION_ABORTED) {
			return int(done), nil
		}
		return int(done), p.fault(err)
	}
	return int(done), nil
}

const pollQuantum = 100 * time.Millisecond

func (p *port) readLocked(buf []byte, deadline time.Time, ctx context.Context) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for {
		op, err := newOverlappedOp()
		if err != nil {
			return 0, err
		}
		var done uint32
		err = windows.ReadFile(p.handle, buf, &done, &op.ov)
		if err != nil && !errors.Is(err, windows.ERROR_IO_PENDING) {
			op.close()
			return 0, p.fault(err)
		}
		waitUntil := deadline
		if !waitUntil.IsZero() {
			// Let the driver-side timeout complete the op first.
			waitUntil = waitUntil.Add(readWaitSlack)
		}
		n, err := p.complete(op, waitUntil, ctx)
		op.close()
		if err != nil || n > 0 {
			return n, err
		}
		// Zero bytes from the driver: a deadline expiry returns the
		// valid zero-progress result, an infinite read is reissued.
		if !deadline.IsZero() {
			return 0, nil
		}
	}
}

func (p *port) writeLocked(data []byte, deadline time.Time, ctx context.Context) (int, error) {
	var written int
	for written < len(data) {
		op, err := newOverlappedOp()
		if err != nil {
			return written, err
		}
		var done uint32
		err = windows.WriteFile(p.handle, data[written:], &done, &op.ov)
		if err != nil && !errors.Is(err, windows.ERROR_IO_PENDING) {
			op.close()
			return written, p.fault(err)
		}
		n, err := p.complete(op, deadline, ctx)
		op.close()
		written += n
		if err != nil {
			return written, err
		}
		if expired(deadline) {
			// Partial write on timeout; the caller loops on the rest.
			return written, nil
		}
	}
	return written, nil
}

// Read reads up to len(buf) bytes, blocking at most the configured read
// timeout. It returns (0, nil) when the timeout elapses with no data.
func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return 0, err
	}
	return p.readLocked(buf, deadlineFor(p.config.ReadTimeout), nil)
}

// Write writes data, blocking at most the configured write timeout. The
// returned count may be short if the timeout elapses first.
func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return 0, err
	}
	return p.writeLocked(data, deadlineFor(p.config.WriteTimeout), nil)
}

// ReadContext reads with context cancellation support. The configured
// read timeout still applies; whichever limit is hit first wins.
func (p *port) ReadContext(ctx context.Context, buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.readLocked(buf, deadlineFor(p.config.ReadTimeout), ctx)
}

// WriteContext writes with context cancellation support.
func (p *port) WriteContext(ctx context.Context, data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.writeLocked(data, deadlineFor(p.config.WriteTimeout), ctx)
}

// Reconfigure applies a new configuration derived from the current one.
// The DCB and timeouts are validated first and pushed whole; on backend
// failure the port enters the error state.
func (p *port) Reconfigure(opts ...Option) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.stateErr(); err != nil {
		return err
	}

	config := p.config
	config.InitialDTR = nil
	config.InitialRTS = nil
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return err
		}
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dtr, rts, err := applyCommState(p.handle, config)
	if err != nil {
		if !errors.Is(err, ErrUnsupportedBaudRate) {
			p.state.Store(int32(stateError))
		}
		return err
	}
	if err := applyCommTimeouts(p.handle, config); err != nil {
		p.state.Store(int32(stateError))
		return fmt.Errorf("failed to set comm timeouts: %w", err)
	}
	p.config = config
	p.dtr = dtr
	p.rts = rts
	return nil
}

// Close cancels pending overlapped operations and releases the handle.
// It is idempotent: the second call is a no-op returning nil. The DCB
// control bits are left alone so DTR does not drop on close.
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if portState(p.state.Load()) == stateClosed {
		return nil
	}
	p.state.Store(int32(stateClosed))
	windows.CancelIoEx(p.handle, nil)
	err := windows.CloseHandle(p.handle)
	p.handle = windows.InvalidHandle
	return err
}

// Drain blocks until all queued output has been transmitted.
func (p *port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return windows.FlushFileBuffers(p.handle)
}

// FlushInput discards any unread input data
func (p *port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return purgeComm(p.handle, purgeRXClear)
}

// FlushOutput discards any unwritten output data
func (p *port) FlushOutput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return purgeComm(p.handle, purgeTXClear)
}

// Flush discards buffered data in both directions
func (p *port) Flush() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return purgeComm(p.handle, purgeRXClear|purgeTXClear)
}

// SetDTR sets the DTR signal state
func (p *port) SetDTR(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	function := uint32(commClrDTR)
	if state {
		function = commSetDTR
	}
	if err := escapeCommFunction(p.handle, function); err != nil {
		return p.fault(err)
	}
	p.dtr = state
	return nil
}

// SetRTS sets the RTS signal state
func (p *port) SetRTS(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	function := uint32(commClrRTS)
	if state {
		function = commSetRTS
	}
	if err := escapeCommFunction(p.handle, function); err != nil {
		return p.fault(err)
	}
	p.rts = state
	return nil
}

// GetDTR returns the last commanded DTR state; the driver interface
// cannot read output lines back.
func (p *port) GetDTR() (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return false, err
	}
	return p.dtr, nil
}

// GetRTS returns the last commanded RTS state.
func (p *port) GetRTS() (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return false, err
	}
	return p.rts, nil
}

func (p *port) getModemBit(bit uint32) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return false, err
	}
	status, err := getCommModemStatus(p.handle)
	if err != nil {
		return false, err
	}
	return status&bit != 0, nil
}

// GetCTS returns the current CTS signal state
func (p *port) GetCTS() (bool, error) { return p.getModemBit(msCTSOn) }

// GetDSR returns the current DSR signal state
func (p *port) GetDSR() (bool, error) { return p.getModemBit(msDSROn) }

// GetCD returns the current carrier detect state
func (p *port) GetCD() (bool, error) { return p.getModemBit(msRLSDOn) }

// GetRI returns the current ring indicator state
func (p *port) GetRI() (bool, error) { return p.getModemBit(msRingOn) }

// GetModemSignals returns current state of all modem control signals
func (p *port) GetModemSignals() (ModemSignals, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return ModemSignals{}, err
	}
	status, err := getCommModemStatus(p.handle)
	if err != nil {
		return ModemSignals{}, err
	}
	signals := modemSignalsFromStatus(status)
	signals.DTR = p.dtr
	signals.RTS = p.rts
	return signals, nil
}

func modemSignalsFromStatus(status uint32) ModemSignals {
	return ModemSignals{
		CTS: status&msCTSOn != 0,
		DSR: status&msDSROn != 0,
		RI:  status&msRingOn != 0,
		DCD: status&msRLSDOn != 0,
	}
}

// signalMaskToEvents converts SignalMask to WaitCommEvent EV_ bits
func signalMaskToEvents(mask SignalMask) uint32 {
	var events uint32
	if mask&SignalCTS != 0 {
		events |= evCTS
	}
	if mask&SignalDSR != 0 {
		events |= evDSR
	}
	if mask&SignalRI != 0 {
		events |= evRing
	}
	if mask&SignalDCD != 0 {
		events |= evRLSD
	}
	return events
}

// detectSignalChanges compares old and new status words to determine what changed
func detectSignalChanges(oldStatus, newStatus uint32) SignalMask {
	var changed SignalMask
	if (oldStatus^newStatus)&msCTSOn != 0 {
		changed |= SignalCTS
	}
	if (oldStatus^newStatus)&msDSROn != 0 {
		changed |= SignalDSR
	}
	if (oldStatus^newStatus)&msRingOn != 0 {
		changed |= SignalRI
	}
	if (oldStatus^newStatus)&msRLSDOn != 0 {
		changed |= SignalDCD
	}
	return changed
}

type signalWaitResult struct {
	newStatus uint32
	err       error
}

func (p *port) startSignalWait(mask SignalMask) (uint32, *overlappedOp, chan signalWaitResult, error) {
	if mask == 0 {
		return 0, nil, nil, ErrInvalidSignalMask
	}
	p.mu.RLock()
	if err := p.stateErr(); err != nil {
		p.mu.RUnlock()
		return 0, nil, nil, err
	}
	handle := p.handle
	p.mu.RUnlock()

	oldStatus, err := getCommModemStatus(handle)
	if err != nil {
		return 0, nil, nil, err
	}
	if err := setCommMask(handle, signalMaskToEvents(mask)); err != nil {
		return 0, nil, nil, err
	}
	op, err := newOverlappedOp()
	if err != nil {
		return 0, nil, nil, err
	}

	resultCh := make(chan signalWaitResult, 1)
	go func() {
		defer op.close()
		var evtMask uint32
		err := waitCommEvent(handle, &evtMask, &op.ov)
		if err != nil && !errors.Is(err, windows.ERROR_IO_PENDING) {
			resultCh <- signalWaitResult{err: err}
			return
		}
		var done uint32
		if err := windows.GetOverlappedResult(handle, &op.ov, &done, true); err != nil {
			resultCh <- signalWaitResult{err: err}
			return
		}
		newStatus, err := getCommModemStatus(handle)
		resultCh <- signalWaitResult{newStatus: newStatus, err: err}
	}()
	return oldStatus, op, resultCh, nil
}

// WaitForSignalChange blocks until any monitored input signal changes
// state, returning the new signal snapshot and which signal(s) changed.
func (p *port) WaitForSignalChange(mask SignalMask, timeout time.Duration) (ModemSignals, SignalMask, error) {
	oldStatus, op, resultCh, err := p.startSignalWait(mask)
	if err != nil {
		return ModemSignals{}, 0, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		if result.err != nil {
			if errors.Is(result.err, windows.ERROR_OPERATION_ABORTED) {
				return ModemSignals{}, 0, ErrSignalTimeout
			}
			return ModemSignals{}, 0, result.err
		}
		return p.signalChangeResult(oldStatus, result.newStatus)
	case <-timer.C:
		windows.CancelIoEx(p.handle, &op.ov)
		return ModemSignals{}, 0, ErrSignalTimeout
	}
}

// WaitForSignalChangeContext waits with context cancellation support
func (p *port) WaitForSignalChangeContext(ctx context.Context, mask SignalMask) (ModemSignals, SignalMask, error) {
	if err := ctx.Err(); err != nil {
		return ModemSignals{}, 0, err
	}
	oldStatus, op, resultCh, err := p.startSignalWait(mask)
	if err != nil {
		return ModemSignals{}, 0, err
	}

	select {
	case result := <-resultCh:
		if result.err != nil {
			return ModemSignals{}, 0, result.err
		}
		return p.signalChangeResult(oldStatus, result.newStatus)
	case <-ctx.Done():
		windows.CancelIoEx(p.handle, &op.ov)
		return ModemSignals{}, 0, ctx.Err()
	}
}

func (p *port) signalChangeResult(oldStatus, newStatus uint32) (ModemSignals, SignalMask, error) {
	signals := modemSignalsFromStatus(newStatus)
	p.mu.RLock()
	signals.DTR = p.dtr
	signals.RTS = p.rts
	p.mu.RUnlock()
	return signals, detectSignalChanges(oldStatus, newStatus), nil
}

// SetBreak asserts or releases the break condition on the TX line
func (p *port) SetBreak(state bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return setCommBreak(p.handle, state)
}

// BytesToRead returns the number of bytes in the driver receive queue
func (p *port) BytesToRead() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return 0, err
	}
	var commErrors uint32
	var stat comstat
	if err := clearCommError(p.handle, &commErrors, &stat); err != nil {
		return 0, err
	}
	return int(stat.InQue), nil
}

// BytesToWrite returns the number of bytes in the driver transmit queue
func (p *port) BytesToWrite() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return 0, err
	}
	var commErrors uint32
	var stat comstat
	if err := clearCommError(p.handle, &commErrors, &stat); err != nil {
		return 0, err
	}
	return int(stat.OutQue), nil
}

// Path returns the device path the port was opened with
func (p *port) Path() string { return p.device }

// Config returns the currently applied configuration
func (p *port) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}
