// Package wire defines the binary record exchanged between the sample
// producer and stream readers.
package wire

import "encoding/binary"

// Size is the fixed on-wire size of a Record, in bytes.
const Size = 16

// Flag bits for Record.Flags. Other bits are reserved and must be zero.
const (
	FlagNewSample uint32 = 0x1
	FlagThreshold uint32 = 0x2
)

// Record is one sample as committed by the producer and delivered to a
// reader. Layout on the wire is exactly 16 bytes in native host byte order:
// timestamp_ns (u64), temp_mC (i32), flags (u32).
type Record struct {
	TimestampNS uint64
	TempMC      int32
	Flags       uint32
}

// HasThreshold reports whether the THRESHOLD flag is set.
func (r Record) HasThreshold() bool {
	return r.Flags&FlagThreshold != 0
}

// Encode writes the record's wire representation into dst, which must be at
// least Size bytes long. It returns the number of bytes written.
func (r Record) Encode(dst []byte) int {
	binary.NativeEndian.PutUint64(dst[0:8], r.TimestampNS)
	binary.NativeEndian.PutUint32(dst[8:12], uint32(r.TempMC))
	binary.NativeEndian.PutUint32(dst[12:16], r.Flags)
	return Size
}

// Bytes returns the record's wire representation as a 16-byte array.
func (r Record) Bytes() [Size]byte {
	var buf [Size]byte
	r.Encode(buf[:])
	return buf
}

// Decode reads a Record from src, which must be at least Size bytes long.
func Decode(src []byte) Record {
	return Record{
		TimestampNS: binary.NativeEndian.Uint64(src[0:8]),
		TempMC:      int32(binary.NativeEndian.Uint32(src[8:12])),
		Flags:       binary.NativeEndian.Uint32(src[12:16]),
	}
}
