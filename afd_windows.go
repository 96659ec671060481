//go:build windows

package iopoll

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	ntdll                           = windows.NewLazySystemDLL("ntdll.dll")
	procNtDeviceIoControlFile       = ntdll.NewProc("NtDeviceIoControlFile")
	procNtCancelIoFileEx            = ntdll.NewProc("NtCancelIoFileEx")
	kernel32                        = windows.NewLazySystemDLL("kernel32.dll")
	procGetQueuedCompletionStatusEx = kernel32.NewProc("GetQueuedCompletionStatusEx")
)

const (
	ioctlAFDPoll  = 0x00012024
	sioBaseHandle = 0x48000022
)

// AFD_POLL_* event bits.
const (
	afdPollReceive          = 0x0001
	afdPollReceiveExpedited = 0x0002
	afdPollSend             = 0x0004
	afdPollDisconnect       = 0x0008
	afdPollAbort            = 0x0010
	afdPollLocalClose       = 0x0020
	afdPollAccept           = 0x0080
	afdPollConnectFail      = 0x0100
)

const (
	afdReadableEvents    = afdPollReceive | afdPollDisconnect | afdPollAccept | afdPollAbort | afdPollConnectFail
	afdReadClosedEvents  = afdPollDisconnect | afdPollAbort | afdPollConnectFail
	afdWritableEvents    = afdPollSend | afdPollAbort | afdPollConnectFail
	afdWriteClosedEvents = afdPollAbort | afdPollConnectFail
	afdErrorEvents       = afdPollConnectFail
)

type afdPollHandleInfo struct {
	Handle windows.Handle
	Events uint32
	Status windows.NTStatus
}

type afdPollInfo struct {
	Timeout         int64
	NumberOfHandles uint32
	Exclusive       uint32
	Handles         [1]afdPollHandleInfo
}

// overlappedEntry is OVERLAPPED_ENTRY.
type overlappedEntry struct {
	CompletionKey            uintptr
	Overlapped               *windows.Overlapped
	Internal                 uintptr
	NumberOfBytesTransferred uint32
}

// openAFD opens a handle to the AFD driver, the kernel side of winsock,
// which accepts poll requests for any number of sockets.
func openAFD(port windows.Handle) (windows.Handle, error) {
	name, err := windows.NewNTUnicodeString(`\Device\Afd\IoPoll`)
	if err != nil {
		return 0, err
	}
	attrs := windows.OBJECT_ATTRIBUTES{ObjectName: name}
	attrs.Length = uint32(unsafe.Sizeof(attrs))
	var (
		h    windows.Handle
		iosb windows.IO_STATUS_BLOCK
	)
	if err := windows.NtCreateFile(
		&h,
		windows.SYNCHRONIZE,
		&attrs,
		&iosb,
		nil,
		0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		windows.FILE_OPEN,
		0,
		0,
		0,
	); err != nil {
		return 0, err
	}
	if _, err := windows.CreateIoCompletionPort(h, port, 0, 0); err != nil {
		_ = windows.CloseHandle(h)
		return 0, err
	}
	if err := windows.SetFileCompletionNotificationModes(h, windows.FILE_SKIP_SET_EVENT_ON_HANDLE); err != nil {
		_ = windows.CloseHandle(h)
		return 0, err
	}
	return h, nil
}

// baseSocket resolves the base provider socket, which is what AFD polls.
// Layered service providers wrap it.
func baseSocket(h Handle) (windows.Handle, error) {
	var (
		base  windows.Handle
		bytes uint32
	)
	if err := windows.WSAIoctl(
		windows.Handle(h),
		sioBaseHandle,
		nil,
		0,
		(*byte)(unsafe.Pointer(&base)),
		uint32(unsafe.Sizeof(base)),
		&bytes,
		nil,
		0,
	); err != nil {
		return 0, err
	}
	return base, nil
}

// afdPoll submits a poll request. The completion is queued to the port with
// state as its overlapped pointer, so state must stay reachable until then.
func afdPoll(afd windows.Handle, state *afdSocketState) windows.NTStatus {
	state.iosb.Status = windows.STATUS_PENDING
	r0, _, _ := procNtDeviceIoControlFile.Call(
		uintptr(afd),
		0,
		0,
		uintptr(unsafe.Pointer(state)),
		uintptr(unsafe.Pointer(&state.iosb)),
		ioctlAFDPoll,
		uintptr(unsafe.Pointer(&state.pollInfo)),
		unsafe.Sizeof(state.pollInfo),
		uintptr(unsafe.Pointer(&state.pollInfo)),
		unsafe.Sizeof(state.pollInfo),
	)
	return windows.NTStatus(r0)
}

func afdCancel(afd windows.Handle, state *afdSocketState) windows.NTStatus {
	var iosb windows.IO_STATUS_BLOCK
	r0, _, _ := procNtCancelIoFileEx.Call(
		uintptr(afd),
		uintptr(unsafe.Pointer(&state.iosb)),
		uintptr(unsafe.Pointer(&iosb)),
	)
	return windows.NTStatus(r0)
}

func interestToAFD(interest Interest) uint32 {
	events := uint32(afdPollLocalClose)
	if interest.IsReadable() {
		events |= afdReadableEvents | afdReadClosedEvents
	}
	if interest.IsWritable() {
		events |= afdWritableEvents | afdWriteClosedEvents
	}
	if interest.IsPriority() {
		events |= afdPollReceiveExpedited
	}
	return events
}

func afdToFlags(events uint32) eventFlags {
	var flags eventFlags
	if events&afdReadableEvents != 0 {
		flags |= flagReadable
	}
	if events&afdWritableEvents != 0 {
		flags |= flagWritable
	}
	if events&afdReadClosedEvents != 0 {
		flags |= flagReadClosed
	}
	if events&afdWriteClosedEvents != 0 {
		flags |= flagWriteClosed
	}
	if events&afdErrorEvents != 0 {
		flags |= flagError
	}
	if events&afdPollReceiveExpedited != 0 {
		flags |= flagPriority
	}
	return flags
}
