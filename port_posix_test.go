//go:build linux || darwin

package serial

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// openLoopback opens a pty pair and wraps the slave side in a Port. Data
// written to the returned master shows up on the port and vice versa.
// Ptys reject the TIOCM ioctls, so Open succeeding here also proves that
// opening touches no modem line.
func openLoopback(t *testing.T, opts ...Option) (Port, *os.File) {
	t.Helper()

	master, slave, err := pty.Open()
	require.NoError(t, err, "pty.Open")
	slaveName := slave.Name()
	// The port takes its own descriptor; the pty package's slave handle
	// is not needed.
	require.NoError(t, slave.Close())

	port, err := Open(slaveName, opts...)
	require.NoError(t, err, "Open(%s)", slaveName)

	t.Cleanup(func() {
		port.Close()
		master.Close()
	})
	return port, master
}

func TestReadWriteRoundtrip(t *testing.T) {
	port, master := openLoopback(t, WithReadTimeout(2*time.Second))

	payload := []byte("roundtrip payload \x00\xff\x7f")
	_, err := master.Write(payload)
	require.NoError(t, err)

	buf := make([]byte, 256)
	var got []byte
	for len(got) < len(payload) {
		n, err := port.Read(buf)
		require.NoError(t, err)
		require.NotZero(t, n, "read timed out before the payload arrived")
		got = append(got, buf[:n]...)
	}
	require.Equal(t, payload, got)

	// And the other direction.
	reply := []byte("reply")
	n, err := port.Write(reply)
	require.NoError(t, err)
	require.Equal(t, len(reply), n)

	echo := make([]byte, len(reply))
	for read := 0; read < len(reply); {
		n, err := master.Read(echo[read:])
		require.NoError(t, err)
		read += n
	}
	require.Equal(t, reply, echo)
}

func TestReadTimeoutReturnsZeroProgress(t *testing.T) {
	timeout := 200 * time.Millisecond
	port, _ := openLoopback(t, WithReadTimeout(timeout))

	buf := make([]byte, 16)
	start := time.Now()
	n, err := port.Read(buf)
	elapsed := time.Since(start)

	require.NoError(t, err, "a timeout is not an error")
	require.Zero(t, n)
	require.GreaterOrEqual(t, elapsed, timeout)
	require.Less(t, elapsed, timeout+time.Second, "read overshot its deadline")
}

func TestReadZeroTimeoutImmediate(t *testing.T) {
	port, master := openLoopback(t, WithReadTimeout(0))

	buf := make([]byte, 16)
	start := time.Now()
	n, err := port.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n, "nothing was written yet")
	require.Less(t, time.Since(start), time.Second, "zero-timeout read blocked")

	_, err = master.Write([]byte("x"))
	require.NoError(t, err)

	// Give the kernel a moment to move the byte across the pty.
	require.Eventually(t, func() bool {
		n, err := port.Read(buf)
		return err == nil && n == 1 && buf[0] == 'x'
	}, time.Second, 10*time.Millisecond)
}

func TestReadContextCancellation(t *testing.T) {
	port, _ := openLoopback(t) // NoTimeout: reads block until cancelled

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	buf := make([]byte, 16)
	start := time.Now()
	_, err := port.ReadContext(ctx, buf)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), 2*time.Second, "cancellation was not observed promptly")
}

func TestCloseIsIdempotent(t *testing.T) {
	port, _ := openLoopback(t)

	require.NoError(t, port.Close())
	require.NoError(t, port.Close(), "second close must be a no-op")

	buf := make([]byte, 8)
	_, err := port.Read(buf)
	require.ErrorIs(t, err, ErrPortClosed)
	_, err = port.Write([]byte("x"))
	require.ErrorIs(t, err, ErrPortClosed)
	require.ErrorIs(t, port.Drain(), ErrPortClosed)
	require.ErrorIs(t, port.Reconfigure(WithBaudRate(9600)), ErrPortClosed)
}

func TestReconfigureKeepsPortUsable(t *testing.T) {
	port, master := openLoopback(t, WithReadTimeout(2*time.Second))

	require.NoError(t, port.Reconfigure(
		WithBaudRate(9600),
		WithDataBits(7),
		WithParity(ParityEven),
	))

	config := port.Config()
	require.Equal(t, 9600, config.BaudRate)
	require.Equal(t, 7, config.DataBits)
	require.Equal(t, ParityEven, config.Parity)

	// An invalid option must leave the port in its previous state.
	err := port.Reconfigure(WithDataBits(12))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = master.Write([]byte{0x42})
	require.NoError(t, err)
	buf := make([]byte, 8)
	n, err := port.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestPathAndConfigAccessors(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()
	slaveName := slave.Name()
	require.NoError(t, slave.Close())

	port, err := Open(slaveName, WithBaudRate(57600))
	require.NoError(t, err)
	defer port.Close()

	require.Equal(t, slaveName, port.Path())
	require.Equal(t, 57600, port.Config().BaudRate)
}

func TestFlushAndQueueCounts(t *testing.T) {
	port, master := openLoopback(t, WithReadTimeout(time.Second))

	_, err := master.Write([]byte("stale input"))
	require.NoError(t, err)

	// Wait for the bytes to land in the receive queue, then discard them.
	require.Eventually(t, func() bool {
		n, err := port.BytesToRead()
		return err == nil && n > 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, port.FlushInput())

	n, err := port.BytesToRead()
	require.NoError(t, err)
	require.Zero(t, n, "flushed input still queued")

	pending, err := port.BytesToWrite()
	require.NoError(t, err)
	require.Zero(t, pending)

	require.NoError(t, port.FlushOutput())
	require.NoError(t, port.Flush())
	require.NoError(t, port.Drain())
}

func TestOpenDoesNotTouchModemLines(t *testing.T) {
	// Ptys reject every TIOCM ioctl with ENOTTY. If Open performed any
	// modem-line call without being asked to, it would fail here.
	port, _ := openLoopback(t)
	require.NotNil(t, port)

	// Asking for an initial line state on a pty must fail instead, which
	// proves the ioctl only happens on request.
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()
	slaveName := slave.Name()
	require.NoError(t, slave.Close())

	_, err = Open(slaveName, WithInitialDTR(true))
	require.Error(t, err)
}

func TestExclusiveOpen(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()
	slaveName := slave.Name()
	require.NoError(t, slave.Close())

	first, err := Open(slaveName)
	require.NoError(t, err)
	defer first.Close()

	_, err = Open(slaveName)
	require.ErrorIs(t, err, ErrDeviceInUse)
}

func TestWriteContextPreCancelled(t *testing.T) {
	port, _ := openLoopback(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := port.WriteContext(ctx, []byte("never sent"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestTranslateOpenError(t *testing.T) {
	_, err := Open("/dev/this-device-does-not-exist-42")
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestConcurrentReaderAndWriter(t *testing.T) {
	port, master := openLoopback(t, WithReadTimeout(2*time.Second))

	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		var total int
		for total < 6 {
			n, err := port.Read(buf)
			if err != nil {
				done <- err
				return
			}
			if n == 0 {
				done <- errors.New("read timed out")
				return
			}
			total += n
		}
		done <- nil
	}()

	_, err := master.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = port.Write([]byte("xyz"))
	require.NoError(t, err)
	_, err = master.Write([]byte("def"))
	require.NoError(t, err)

	// Drain the echo of our own write from the master side.
	go func() {
		buf := make([]byte, 64)
		master.Read(buf)
	}()

	require.NoError(t, <-done)
}
