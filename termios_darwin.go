//go:build darwin

package serial

import "golang.org/x/sys/unix"

// FIONREAD is missing from x/sys on darwin.
const ioctlFIONREAD = 0x4004667f

// tcflush selectors for TIOCFLUSH.
const (
	flushRead  = 0x1 // FREAD
	flushWrite = 0x2 // FWRITE
)

// baudRateConst converts an integer baud rate to the termios speed
// value. Darwin's IOKit drivers advertise a narrower table than Linux;
// anything outside it fails instead of being rounded.
func baudRateConst(rate int) (uint64, error) {
	switch rate {
	case 50, 75, 110, 134, 150, 200, 300, 600, 1200, 1800, 2400, 4800,
		7200, 9600, 14400, 19200, 28800, 38400, 57600, 76800, 115200, 230400:
		return uint64(rate), nil
	default:
		return 0, ErrUnsupportedBaudRate
	}
}

// applyTermios pushes the whole configuration in a single TIOCSETA call.
func applyTermios(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return translateOpenError(err)
	}

	baud, err := baudRateConst(config.BaudRate)
	if err != nil {
		return err
	}

	// Darwin has no mark/space parity bits in termios.
	if config.Parity == ParityMark || config.Parity == ParitySpace {
		return ErrUnsupportedOperation
	}

	// Raw mode. CLOCAL ignores the modem lines, CREAD enables the
	// receiver. HUPCL stays off so closing the port does not drop DTR.
	termios.Cflag = unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// Speed lives in the ispeed/ospeed fields, not in Cflag.
	termios.Ispeed = baud
	termios.Ospeed = baud

	switch config.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	case 8:
		termios.Cflag |= unix.CS8
	}

	if config.StopBits == StopBits2 || config.StopBits == StopBits1Half {
		termios.Cflag |= unix.CSTOPB
	}

	switch config.Parity {
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
		termios.Iflag |= unix.INPCK
	case ParityEven:
		termios.Cflag |= unix.PARENB
		termios.Iflag |= unix.INPCK
	}

	switch config.FlowControl {
	case FlowControlSoftware:
		termios.Iflag |= unix.IXON | unix.IXOFF
	case FlowControlHardware:
		termios.Cflag |= unix.CRTSCTS
	}

	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TIOCSETA, termios); err != nil {
		return translateOpenError(err)
	}
	return nil
}

func drainOutput(fd int) error {
	return unix.IoctlSetInt(fd, unix.TIOCDRAIN, 0)
}

func discardBuffers(fd int, input, output bool) error {
	var com int
	if input {
		com |= flushRead
	}
	if output {
		com |= flushWrite
	}
	if com == 0 {
		return nil
	}
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, com)
}

func inputQueueCount(fd int) (int, error) {
	return unix.IoctlGetInt(fd, ioctlFIONREAD)
}

func outputQueueCount(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCOUTQ)
}

// Darwin has no TIOCMIWAIT equivalent; signal monitoring is not
// available on this platform.
func waitModemEvent(fd int, bits int) error {
	return ErrUnsupportedOperation
}
