//go:build windows

package serial

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const maxDWORD = 0xffffffff

// dcb mirrors the Win32 DCB structure.
// https://learn.microsoft.com/en-us/windows/win32/api/winbase/ns-winbase-dcb
type dcb struct {
	DCBLength uint32
	BaudRate  uint32

	// Flags is a bitfield
	// DWORD fBinary : 1;
	// DWORD fParity : 1;
	// DWORD fOutxCtsFlow : 1;
	// DWORD fOutxDsrFlow : 1;
	// DWORD fDtrControl : 2;
	// DWORD fDsrSensitivity : 1;
	// DWORD fTXContinueOnXoff : 1;
	// DWORD fOutX : 1;
	// DWORD fInX : 1;
	// DWORD fErrorChar : 1;
	// DWORD fNull : 1;
	// DWORD fRtsControl : 2;
	// DWORD fAbortOnError : 1;
	// DWORD fDummy2 : 17;
	Flags uint32

	WReserved  uint16
	XonLim     uint16
	XoffLim    uint16
	ByteSize   uint8
	Parity     uint8
	StopBits   uint8
	XonChar    int8
	XoffChar   int8
	ErrorChar  int8
	EOFChar    int8
	EvtChar    int8
	WReserved1 uint16
}

// comstat mirrors the Win32 COMSTAT structure.
type comstat struct {
	Flags uint32
	InQue uint32
	OutQue uint32
}

const (
	dcbfBinary           = 0b01 << 0
	dcbfParity           = 0b01 << 1
	dcbfOutxCTSFlow      = 0b01 << 2
	dcbfOutxDSRFlow      = 0b01 << 3
	dcbfDTRControl       = 0b11 << 4
	dcbfDSRSensitivity   = 0b01 << 6
	dcbfTXContinueOnXoff = 0b01 << 7
	dcbfOutX             = 0b01 << 8
	dcbfInX              = 0b01 << 9
	dcbfErrorChar        = 0b01 << 10
	dcbfNull             = 0b01 << 11
	dcbfRTSControl       = 0b11 << 12
	dcbfAbortOnError     = 0b01 << 14
)

const (
	dtrControlDisable = 0x0 << 4
	dtrControlEnable  = 0x1 << 4
)

const (
	rtsControlDisable   = 0x0 << 12
	rtsControlEnable    = 0x1 << 12
	rtsControlHandshake = 0x2 << 12
)

const (
	oneStopBit   = 0x0
	one5StopBits = 0x1
	twoStopBits  = 0x2
)

const (
	noParity    = 0x0
	oddParity   = 0x1
	evenParity  = 0x2
	markParity  = 0x3
	spaceParity = 0x4
)

const (
	xonChar  = 17
	xoffChar = 19
)

// EscapeCommFunction codes
const (
	commSetXOFF  = 1
	commSetXON   = 2
	commSetRTS   = 3
	commClrRTS   = 4
	commSetDTR   = 5
	commClrDTR   = 6
	commSetBreak = 8
	commClrBreak = 9
)

// GetCommModemStatus bits
const (
	msCTSOn  = 0x0010
	msDSROn  = 0x0020
	msRingOn = 0x0040
	msRLSDOn = 0x0080
)

// WaitCommEvent masks
const (
	evCTS  = 0x0008
	evDSR  = 0x0010
	evRLSD = 0x0020
	evRing = 0x0100
)

// PurgeComm flags
const (
	purgeTXClear = 0x0004
	purgeRXClear = 0x0008
)

// Comm functions missing from x/sys/windows, resolved lazily from
// kernel32 the way the rest of the ecosystem does it.
var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procGetCommState       = kernel32.NewProc("GetCommState")
	procSetCommState       = kernel32.NewProc("SetCommState")
	procSetupComm          = kernel32.NewProc("SetupComm")
	procPurgeComm          = kernel32.NewProc("PurgeComm")
	procEscapeCommFunction = kernel32.NewProc("EscapeCommFunction")
	procGetCommModemStatus = kernel32.NewProc("GetCommModemStatus")
	procSetCommMask        = kernel32.NewProc("SetCommMask")
	procWaitCommEvent      = kernel32.NewProc("WaitCommEvent")
	procClearCommError     = kernel32.NewProc("ClearCommError")
	procSetCommBreak       = kernel32.NewProc("SetCommBreak")
	procClearCommBreak     = kernel32.NewProc("ClearCommBreak")
)

func commErr(e1 error) error {
	if errno, ok := e1.(syscall.Errno); ok && errno != 0 {
		return errno
	}
	return syscall.EINVAL
}

func getCommState(handle windows.Handle, d *dcb) error {
	d.DCBLength = uint32(unsafe.Sizeof(*d))
	r1, _, e1 := procGetCommState.Call(uintptr(handle), uintptr(unsafe.Pointer(d)))
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}

func setCommState(handle windows.Handle, d *dcb) error {
	d.DCBLength = uint32(unsafe.Sizeof(*d))
	r1, _, e1 := procSetCommState.Call(uintptr(handle), uintptr(unsafe.Pointer(d)))
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}

func setupComm(handle windows.Handle, rxSize, txSize uint32) error {
	r1, _, e1 := procSetupComm.Call(uintptr(handle), uintptr(rxSize), uintptr(txSize))
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}

func purgeComm(handle windows.Handle, flags uint32) error {
	r1, _, e1 := procPurgeComm.Call(uintptr(handle), uintptr(flags))
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}

func escapeCommFunction(handle windows.Handle, function uint32) error {
	r1, _, e1 := procEscapeCommFunction.Call(uintptr(handle), uintptr(function))
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}

func getCommModemStatus(handle windows.Handle) (uint32, error) {
	var status uint32
	r1, _, e1 := procGetCommModemStatus.Call(uintptr(handle), uintptr(unsafe.Pointer(&status)))
	if r1 == 0 {
		return 0, commErr(e1)
	}
	return status, nil
}

func setCommMask(handle windows.Handle, mask uint32) error {
	r1, _, e1 := procSetCommMask.Call(uintptr(handle), uintptr(mask))
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}

// waitCommEvent issues an overlapped wait for a comm event. A zero
// return with ERROR_IO_PENDING means the wait is pending on the
// overlapped event.
func waitCommEvent(handle windows.Handle, evtMask *uint32, ov *windows.Overlapped) error {
	r1, _, e1 := procWaitCommEvent.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(evtMask)),
		uintptr(unsafe.Pointer(ov)),
	)
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}

func clearCommError(handle windows.Handle, errors *uint32, stat *comstat) error {
	r1, _, e1 := procClearCommError.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(errors)),
		uintptr(unsafe.Pointer(stat)),
	)
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}

func setCommBreak(handle windows.Handle, state bool) error {
	proc := procSetCommBreak
	if !state {
		proc = procClearCommBreak
	}
	r1, _, e1 := proc.Call(uintptr(handle))
	if r1 == 0 {
		return commErr(e1)
	}
	return nil
}
