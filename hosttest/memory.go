package hosttest

import (
	"encoding/binary"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/errors"
)

// memBase is the address of the first byte of test storage. Address zero is
// never mapped, so nil-like words fault instead of reading garbage.
const memBase = 0x10000

// memCap fixes the storage capacity up front. Growing the backing array
// would invalidate the views Read hands out, so the buffer never reallocates
// and exhaustion is a hard failure.
const memCap = 1 << 22

type linearMemory struct {
	buf []byte
}

func newLinearMemory() *linearMemory {
	return &linearMemory{buf: make([]byte, 0, memCap)}
}

// extend reserves size bytes and returns their address.
func (m *linearMemory) extend(size uint32) pgruntime.Datum {
	if len(m.buf)+int(size) > memCap {
		panic("hosttest: test memory exhausted")
	}
	ptr := pgruntime.Datum(memBase + len(m.buf))
	m.buf = m.buf[:len(m.buf)+int(size)]
	return ptr
}

func (m *linearMemory) slice(ptr pgruntime.Datum, length uint32) ([]byte, error) {
	off := uint64(ptr)
	if off < memBase || off-memBase+uint64(length) > uint64(len(m.buf)) {
		return nil, errors.OutOfBounds(errors.PhaseHost,
			"access outside mapped test storage", nil)
	}
	start := off - memBase
	return m.buf[start : start+uint64(length) : start+uint64(length)], nil
}

func (m *linearMemory) Read(ptr pgruntime.Datum, length uint32) ([]byte, error) {
	return m.slice(ptr, length)
}

func (m *linearMemory) Write(ptr pgruntime.Datum, data []byte) error {
	dst, err := m.slice(ptr, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

func (m *linearMemory) ReadU8(ptr pgruntime.Datum) (uint8, error) {
	b, err := m.slice(ptr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *linearMemory) ReadU16(ptr pgruntime.Datum) (uint16, error) {
	b, err := m.slice(ptr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (m *linearMemory) ReadU32(ptr pgruntime.Datum) (uint32, error) {
	b, err := m.slice(ptr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *linearMemory) ReadU64(ptr pgruntime.Datum) (uint64, error) {
	b, err := m.slice(ptr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *linearMemory) WriteU8(ptr pgruntime.Datum, value uint8) error {
	b, err := m.slice(ptr, 1)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

func (m *linearMemory) WriteU16(ptr pgruntime.Datum, value uint16) error {
	b, err := m.slice(ptr, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, value)
	return nil
}

func (m *linearMemory) WriteU32(ptr pgruntime.Datum, value uint32) error {
	b, err := m.slice(ptr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, value)
	return nil
}

func (m *linearMemory) WriteU64(ptr pgruntime.Datum, value uint64) error {
	b, err := m.slice(ptr, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, value)
	return nil
}
