package wasi

import (
	"encoding/binary"
)

// Sizes of the preview1 ABI records, little-endian in linear memory.
const (
	subscriptionSize = 48
	eventSize        = 32
)

// encodeSubscriptions writes subs in their ABI layout:
//
//	userdata u64 @0, tag u8 @8, then the union @16:
//	  clock:         id u32 @16, timeout u64 @24, precision u64 @32, flags u16 @40
//	  fd_read/write: fd u32 @16
func encodeSubscriptions(buf []byte, subs []Subscription) {
	for i, s := range subs {
		b := buf[i*subscriptionSize : (i+1)*subscriptionSize]
		clear(b)
		binary.LittleEndian.PutUint64(b[0:], s.userdata)
		b[8] = byte(s.typ)
		switch s.typ {
		case EventTypeClock:
			binary.LittleEndian.PutUint32(b[16:], uint32(s.clock.ID))
			binary.LittleEndian.PutUint64(b[24:], s.clock.Timeout)
			binary.LittleEndian.PutUint64(b[32:], s.clock.Precision)
			binary.LittleEndian.PutUint16(b[40:], uint16(s.clock.Flags))
		default:
			binary.LittleEndian.PutUint32(b[16:], s.fd)
		}
	}
}

// decodeEvents reads events from their ABI layout:
//
//	userdata u64 @0, error u16 @8, type u8 @10, nbytes u64 @16, flags u16 @24
func decodeEvents(events []Event, buf []byte) {
	for i := range events {
		b := buf[i*eventSize : (i+1)*eventSize]
		events[i] = Event{
			Userdata: binary.LittleEndian.Uint64(b[0:]),
			Error:    Errno(binary.LittleEndian.Uint16(b[8:])),
			Type:     EventType(b[10]),
			FdReadWrite: EventFdReadWrite{
				NBytes: binary.LittleEndian.Uint64(b[16:]),
				Flags:  EventRWFlags(binary.LittleEndian.Uint16(b[24:])),
			},
		}
	}
}
