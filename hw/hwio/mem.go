package hwio

import (
	"slices"
	"strconv"

	"emu65/emu/log"
	"emu65/hw/hwerr"
	"emu65/hw/inspect"
	"emu65/hw/snapshot"
)

// Mem is a linear memory area (RAM or ROM) of fixed size. Base is the
// absolute address of its first byte, which is where it's expected to be
// mapped.
type Mem struct {
	Name string
	Base uint16

	data []byte
	ro   bool
}

func newMem(kind, name string, base uint16, size int, ro bool) (*Mem, error) {
	if size <= 0 || int(base)+size > 0x10000 {
		return nil, hwerr.Constructionf(kind, "new", "%s: %d bytes at $%04X don't fit the address space", name, size, base)
	}
	return &Mem{
		Name: name,
		Base: base,
		data: make([]byte, size),
		ro:   ro,
	}, nil
}

// NewRAM creates a zeroed read-write memory of size bytes.
func NewRAM(name string, base uint16, size int) (*Mem, error) {
	return newMem("ram", name, base, size, false)
}

// NewROM creates a read-only memory of size bytes. Its content can only be
// set with Flash.
func NewROM(name string, base uint16, size int) (*Mem, error) {
	return newMem("rom", name, base, size, true)
}

func (m *Mem) kind() string {
	if m.ro {
		return "rom"
	}
	return "ram"
}

func (m *Mem) ReadOnly() bool { return m.ro }
func (m *Mem) Size() int      { return len(m.data) }

// Data returns a copy of the memory content.
func (m *Mem) Data() []byte { return slices.Clone(m.data) }

// Mapping returns the bus mapping covering the whole memory at Base.
func (m *Mem) Mapping() Mapping {
	return Mapping{
		Start: m.Base,
		End:   uint16(int(m.Base) + len(m.data) - 1),
		Dev:   m,
		Name:  m.Name,
	}
}

func (m *Mem) Read8(addr uint16, _ bool) uint8 {
	if int(addr) >= len(m.data) {
		return 0
	}
	return m.data[addr]
}

func (m *Mem) Write8(addr uint16, val uint8) {
	switch {
	case m.ro:
		log.ModMem.ErrorZ("Write8 to read-only memory").
			String("name", m.Name).
			Hex16("addr", m.Base+addr).
			Hex8("val", val).
			End()
	case int(addr) >= len(m.data):
		log.ModMem.DebugZ("Write8 past end of memory").
			String("name", m.Name).
			Hex16("off", addr).
			Hex8("val", val).
			End()
	default:
		m.data[addr] = val
	}
}

// Flash loads an image into the memory. The first 2 bytes of buf are the
// absolute load address (little endian), the rest is the payload. Flash
// ignores the read-only flag.
func (m *Mem) Flash(buf []byte) error {
	if len(buf) < 2 {
		return hwerr.Constructionf(m.kind(), "flash", "%s: image too short (%d bytes)", m.Name, len(buf))
	}
	addr := uint16(buf[0]) | uint16(buf[1])<<8
	payload := buf[2:]
	if addr < m.Base {
		return hwerr.Constructionf(m.kind(), "flash", "%s: load address $%04X below base $%04X", m.Name, addr, m.Base)
	}
	off := int(addr - m.Base)
	if off+len(payload) > len(m.data) {
		return hwerr.Constructionf(m.kind(), "flash", "%s: %d bytes at $%04X exceed capacity (%d bytes from $%04X)",
			m.Name, len(payload), addr, len(m.data), m.Base)
	}
	copy(m.data[off:], payload)

	log.ModMem.DebugZ("flashed image").
		String("name", m.Name).
		Hex16("addr", addr).
		Int("size", len(payload)).
		End()
	return nil
}

func (m *Mem) Inspect() inspect.Report {
	return inspect.Report{
		ID:   m.kind() + ":" + m.Name,
		Type: m.kind(),
		Name: m.Name,
		Registers: []inspect.Field{
			{Name: "base", Value: inspect.Hex16(m.Base)},
			{Name: "end", Value: inspect.Hex16(m.Mapping().End)},
		},
		Stats: []inspect.Field{
			{Name: "size", Value: strconv.Itoa(len(m.data))},
		},
	}
}

func (m *Mem) Snapshot() snapshot.Mem {
	return snapshot.Mem{
		Version:  snapshot.MemVersion,
		Name:     m.Name,
		Base:     int(m.Base),
		ReadOnly: m.ro,
		Data:     slices.Clone(m.data),
	}
}

// CheckSnapshot migrates s and verifies it describes a memory with the same
// base, size and access as m, without modifying m.
func (m *Mem) CheckSnapshot(s snapshot.Mem) (snapshot.Mem, error) {
	s, err := snapshot.MigrateMem(s)
	if err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	if s.Base != int(m.Base) || len(s.Data) != len(m.data) || s.ReadOnly != m.ro {
		return s, hwerr.Statef(m.kind(), "restore", "%s: snapshot layout (%d bytes at $%04X) doesn't match memory (%d bytes at $%04X)",
			m.Name, len(s.Data), s.Base, len(m.data), m.Base)
	}
	return s, nil
}

// Restore replaces the memory content with the one of s, which must
// describe a memory with the same base and size.
func (m *Mem) Restore(s snapshot.Mem) error {
	s, err := m.CheckSnapshot(s)
	if err != nil {
		return err
	}
	copy(m.data, s.Data)
	return nil
}
