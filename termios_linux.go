//go:build linux

package serial

import "golang.org/x/sys/unix"

// baudRateConst converts an integer baud rate to the termios constant.
// The kernel accepts only this discrete set; anything else fails instead
// of being rounded to a neighbour.
func baudRateConst(rate int) (uint32, error) {
	switch rate {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, ErrUnsupportedBaudRate
	}
}

// applyTermios pushes the whole configuration in a single TCSETS call.
func applyTermios(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return translateOpenError(err)
	}

	baud, err := baudRateConst(config.BaudRate)
	if err != nil {
		return err
	}

	// Raw mode. CLOCAL ignores the modem lines, CREAD enables the
	// receiver. HUPCL stays off so closing the port does not drop DTR.
	termios.Cflag = unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baud
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

	// The kernel has one CSTOPB flag; with 5 data bits it transmits 1.5
	// stop bits, with more it transmits 2.
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
	case ParityMark:
		termios.Cflag |= unix.PARENB | unix.PARODD | unix.CMSPAR
		termios.Iflag |= unix.INPCK
	case ParitySpace:
		termios.Cflag |= unix.PARENB | unix.CMSPAR
		termios.Iflag |= unix.INPCK
	}

	switch config.FlowControl {
	case FlowControlSoftware:
		termios.Iflag |= unix.IXON | unix.IXOFF
	case FlowControlHardware:
		termios.Cflag |= unix.CRTSCTS
	}

	// The fd is non-blocking and timeouts run through poll, so the
	// interbyte timer stays disabled.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return translateOpenError(err)
	}
	return nil
}

func drainOutput(fd int) error {
	// tcdrain(3) is ioctl(TCSBRK) with a non-zero argument.
	return unix.IoctlSetInt(fd, unix.TCSBRK, 1)
}

func discardBuffers(fd int, input, output bool) error {
	var queue int
	switch {
	case input && output:
		queue = unix.TCIOFLUSH
	case input:
		queue = unix.TCIFLUSH
	case output:
		queue = unix.TCOFLUSH
	default:
		return nil
	}
	return unix.IoctlSetInt(fd, unix.TCFLSH, queue)
}

func inputQueueCount(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCINQ)
}

func outputQueueCount(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCOUTQ)
}

// waitModemEvent blocks in the kernel until one of the masked modem
// lines changes state.
func waitModemEvent(fd int, bits int) error {
	return unix.IoctlSetInt(fd, unix.TIOCMIWAIT, bits)
}
