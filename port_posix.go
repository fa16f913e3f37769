//go:build linux || darwin

package serial

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// Poll slice used when a context has to be observed while blocked.
const pollQuantum = 100 * time.Millisecond

// port is the POSIX implementation of the Port interface. The file
// descriptor stays in non-blocking mode for its whole lifetime; read and
// write timeouts are emulated with poll(2) deadlines instead of VMIN/VTIME
// so arbitrary durations work and a timeout leaves nothing pending in the
// kernel.
type port struct {
	mu     sync.RWMutex
	fd     int
	device string
	config Config
	state  atomic.Int32
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

func nativeOpen(device string, config Config) (*port, error) {
	// O_NOCTTY: the device must not become our controlling terminal.
	// O_NONBLOCK: do not wait for carrier on open, and keep the fd
	// non-blocking afterwards for the poll-based timeout engine.
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, translateOpenError(err)
	}

	// Exclusive mode: a second open of the same device fails with EBUSY.
	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		unix.Close(fd)
		return nil, translateOpenError(err)
	}

	// The full termios structure is applied in one syscall; no
	// half-configured window is observable.
	if err := applyTermios(fd, config); err != nil {
		unix.Close(fd)
		return nil, err
	}

	// Modem lines are only touched when explicitly requested. Open with
	// no initial states performs no TIOCM ioctl at all.
	if config.InitialRTS != nil {
		if err := setModemBits(fd, unix.TIOCM_RTS, *config.InitialRTS); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("failed to set initial RTS: %w", err)
		}
	}
	if config.InitialDTR != nil {
		if err := setModemBits(fd, unix.TIOCM_DTR, *config.InitialDTR); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("failed to set initial DTR: %w", err)
		}
	}

	p := &port{fd: fd, device: device, config: config}
	p.state.Store(int32(stateReady))
	return p, nil
}

// translateOpenError maps open(2) errnos into the portable taxonomy.
func translateOpenError(err error) error {
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		return ErrDeviceNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return ErrPermissionDenied
	case errors.Is(err, unix.EBUSY):
		return ErrDeviceInUse
	}
	return err
}

func getModemStatus(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCMGET)
}

func setModemBits(fd int, bits int, state bool) error {
	if state {
		return unix.IoctlSetInt(fd, unix.TIOCMBIS, bits)
	}
	return unix.IoctlSetInt(fd, unix.TIOCMBIC, bits)
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
	if errors.Is(err, unix.EIO) || errors.Is(err, unix.ENXIO) || errors.Is(err, unix.ENODEV) {
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

// pollMillis returns the poll(2) timeout argument for a deadline,
// optionally clamped so a context can be observed between slices.
func pollMillis(deadline time.Time, clamped bool) int {
	if deadline.IsZero() {
		if clamped {
			return int(pollQuantum.Milliseconds())
		}
		return -1
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0
	}
	if clamped && remaining > pollQuantum {
		remaining = pollQuantum
	}
	ms := int(remaining.Milliseconds())
	if ms == 0 {
		ms = 1
	}
	return ms
}

func expired(deadline time.Time) bool {
	return !deadline.IsZero() && !time.Now().Before(deadline)
}

// waitEvent polls the descriptor for the given event until the deadline.
// It returns true when the descriptor is ready, false on deadline expiry.
func (p *port) waitEvent(events int16, deadline time.Time, ctx context.Context) (bool, error) {
	for {
		if ctx != nil && ctx.Err() != nil {
			return false, ctx.Err()
		}
		fds := []unix.PollFd{{Fd: int32(p.fd), Events: events}}
		n, err := unix.Poll(fds, pollMillis(deadline, ctx != nil))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, p.fault(err)
		}
		if n > 0 {
			if fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
				return false, p.fault(unix.EIO)
			}
			return true, nil
		}
		if expired(deadline) {
			return false, nil
		}
	}
}

func (p *port) readLocked(buf []byte, deadline time.Time, ctx context.Context) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for {
		ready, err := p.waitEvent(unix.POLLIN, deadline, ctx)
		if err != nil {
			return 0, err
		}
		if !ready {
			// Timeout with no data is a valid zero-progress result.
			return 0, nil
		}
		n, err := unix.Read(p.fd, buf)
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			if expired(deadline) {
				return 0, nil
			}
			continue
		}
		if err != nil {
			return 0, p.fault(err)
		}
		if n == 0 {
			// EOF from a tty means the device went away.
			return 0, p.fault(unix.EIO)
		}
		// Whatever arrived before the deadline is returned immediately;
		// the backend never waits to fill the buffer.
		return n, nil
	}
}

func (p *port) writeLocked(data []byte, deadline time.Time, ctx context.Context) (int, error) {
	var written int
	for written < len(data) {
		ready, err := p.waitEvent(unix.POLLOUT, deadline, ctx)
		if err != nil {
			return written, err
		}
		if !ready {
			// Partial write on timeout; the caller loops on the rest.
			return written, nil
		}
		n, err := unix.Write(p.fd, data[written:])
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			if expired(deadline) {
				return written, nil
			}
			continue
		}
		if err != nil {
			return written, p.fault(err)
		}
		written += n
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
// The whole termios structure is validated first and pushed in a single
// syscall; on backend failure the port enters the error state.
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

	if err := applyTermios(p.fd, config); err != nil {
		p.state.Store(int32(stateError))
		return err
	}
	if config.InitialRTS != nil {
		if err := setModemBits(p.fd, unix.TIOCM_RTS, *config.InitialRTS); err != nil {
			p.state.Store(int32(stateError))
			return p.fault(err)
		}
	}
	if config.InitialDTR != nil {
		if err := setModemBits(p.fd, unix.TIOCM_DTR, *config.InitialDTR); err != nil {
			p.state.Store(int32(stateError))
			return p.fault(err)
		}
	}
	p.config = config
	return nil
}

// Close releases the descriptor. It is idempotent: the second call is a
// no-op returning nil. Close does not touch the modem lines; HUPCL is
// cleared at open so the kernel does not drop DTR here either.
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if portState(p.state.Load()) == stateClosed {
		return nil
	}
	p.state.Store(int32(stateClosed))
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}

// Drain blocks until all queued output has been transmitted.
func (p *port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return drainOutput(p.fd)
}

// FlushInput discards any unread input data
func (p *port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return discardBuffers(p.fd, true, false)
}

// FlushOutput discards any unwritten output data
func (p *port) FlushOutput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return discardBuffers(p.fd, false, true)
}

// Flush discards buffered data in both directions
func (p *port) Flush() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return discardBuffers(p.fd, true, true)
}

// SetDTR sets the DTR signal state
func (p *port) SetDTR(state bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return setModemBits(p.fd, unix.TIOCM_DTR, state)
}

// SetRTS sets the RTS signal state
func (p *port) SetRTS(state bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	return setModemBits(p.fd, unix.TIOCM_RTS, state)
}

func (p *port) getModemBit(bit int) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return false, err
	}
	status, err := getModemStatus(p.fd)
	if err != nil {
		return false, err
	}
	return status&bit != 0, nil
}

// GetDTR returns the current DTR signal state
func (p *port) GetDTR() (bool, error) { return p.getModemBit(unix.TIOCM_DTR) }

// GetRTS returns the current RTS signal state
func (p *port) GetRTS() (bool, error) { return p.getModemBit(unix.TIOCM_RTS) }

// GetCTS returns the current CTS signal state
func (p *port) GetCTS() (bool, error) { return p.getModemBit(unix.TIOCM_CTS) }

// GetDSR returns the current DSR signal state
func (p *port) GetDSR() (bool, error) { return p.getModemBit(unix.TIOCM_DSR) }

// GetCD returns the current carrier detect state
func (p *port) GetCD() (bool, error) { return p.getModemBit(unix.TIOCM_CAR) }

// GetRI returns the current ring indicator state
func (p *port) GetRI() (bool, error) { return p.getModemBit(unix.TIOCM_RI) }

// GetModemSignals returns current state of all modem control signals
func (p *port) GetModemSignals() (ModemSignals, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return ModemSignals{}, err
	}
	status, err := getModemStatus(p.fd)
	if err != nil {
		return ModemSignals{}, err
	}
	return modemSignalsFromStatus(status), nil
}

func modemSignalsFromStatus(status int) ModemSignals {
	return ModemSignals{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		RI:  status&unix.TIOCM_RI != 0,
		DCD: status&unix.TIOCM_CAR != 0,
		RTS: status&unix.TIOCM_RTS != 0,
		DTR: status&unix.TIOCM_DTR != 0,
	}
}

// signalMaskToTIOCM converts SignalMask to unix TIOCM bits
func signalMaskToTIOCM(mask SignalMask) int {
	var bits int
	if mask&SignalCTS != 0 {
		bits |= unix.TIOCM_CTS
	}
	if mask&SignalDSR != 0 {
		bits |= unix.TIOCM_DSR
	}
	if mask&SignalRI != 0 {
		bits |= unix.TIOCM_RI
	}
	if mask&SignalDCD != 0 {
		bits |= unix.TIOCM_CAR
	}
	return bits
}

// detectSignalChanges compares old and new signal states to determine what changed
func detectSignalChanges(oldStatus, newStatus int) SignalMask {
	var changed SignalMask
	if (oldStatus&unix.TIOCM_CTS != 0) != (newStatus&unix.TIOCM_CTS != 0) {
		changed |= SignalCTS
	}
	if (oldStatus&unix.TIOCM_DSR != 0) != (newStatus&unix.TIOCM_DSR != 0) {
		changed |= SignalDSR
	}
	if (oldStatus&unix.TIOCM_RI != 0) != (newStatus&unix.TIOCM_RI != 0) {
		changed |= SignalRI
	}
	if (oldStatus&unix.TIOCM_CAR != 0) != (newStatus&unix.TIOCM_CAR != 0) {
		changed |= SignalDCD
	}
	return changed
}

type signalWaitResult struct {
	newStatus int
	err       error
}

func (p *port) startSignalWait(mask SignalMask) (int, chan signalWaitResult, error) {
	if mask == 0 {
		return 0, nil, ErrInvalidSignalMask
	}
	p.mu.RLock()
	if err := p.stateErr(); err != nil {
		p.mu.RUnlock()
		return 0, nil, err
	}
	fd := p.fd
	p.mu.RUnlock()

	oldStatus, err := getModemStatus(fd)
	if err != nil {
		return 0, nil, err
	}

	resultCh := make(chan signalWaitResult, 1)
	go func() {
		if err := waitModemEvent(fd, signalMaskToTIOCM(mask)); err != nil {
			resultCh <- signalWaitResult{err: err}
			return
		}
		newStatus, err := getModemStatus(fd)
		resultCh <- signalWaitResult{newStatus: newStatus, err: err}
	}()
	return oldStatus, resultCh, nil
}

// WaitForSignalChange blocks until any monitored input signal changes
// state, returning the new signal snapshot and which signal(s) changed.
func (p *port) WaitForSignalChange(mask SignalMask, timeout time.Duration) (ModemSignals, SignalMask, error) {
	oldStatus, resultCh, err := p.startSignalWait(mask)
	if err != nil {
		return ModemSignals{}, 0, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return ModemSignals{}, 0, result.err
		}
		return modemSignalsFromStatus(result.newStatus), detectSignalChanges(oldStatus, result.newStatus), nil
	case <-timer.C:
		return ModemSignals{}, 0, ErrSignalTimeout
	}
}

// WaitForSignalChangeContext waits with context cancellation support
func (p *port) WaitForSignalChangeContext(ctx context.Context, mask SignalMask) (ModemSignals, SignalMask, error) {
	if err := ctx.Err(); err != nil {
		return ModemSignals{}, 0, err
	}
	oldStatus, resultCh, err := p.startSignalWait(mask)
	if err != nil {
		return ModemSignals{}, 0, err
	}

	select {
	case result := <-resultCh:
		if result.err != nil {
			return ModemSignals{}, 0, result.err
		}
		return modemSignalsFromStatus(result.newStatus), detectSignalChanges(oldStatus, result.newStatus), nil
	case <-ctx.Done():
		return ModemSignals{}, 0, ctx.Err()
	}
}

// SetBreak asserts or releases the break condition on the TX line
func (p *port) SetBreak(state bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return err
	}
	if state {
		return unix.IoctlSetInt(p.fd, unix.TIOCSBRK, 0)
	}
	return unix.IoctlSetInt(p.fd, unix.TIOCCBRK, 0)
}

// BytesToRead returns the number of bytes in the kernel receive queue
func (p *port) BytesToRead() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return 0, err
	}
	return inputQueueCount(p.fd)
}

// BytesToWrite returns the number of bytes in the kernel transmit queue
func (p *port) BytesToWrite() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.stateErr(); err != nil {
		return 0, err
	}
	return outputQueueCount(p.fd)
}

// Path returns the device path the port was opened with
func (p *port) Path() string { return p.device }

// Config returns the currently applied configuration
func (p *port) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}
