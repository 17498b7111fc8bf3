package hwio

import (
	"slices"
	"strconv"

	"emu65/emu/log"
	"emu65/hw/hwerr"
	"emu65/hw/inspect"
	"emu65/hw/snapshot"
)

// log unmapped accesses (useful for debugging but verbose since a lot of
// programs probe the address space)
const logUnmapped = false

// DefaultCacheSize is the number of resolved addresses a Table remembers.
const DefaultCacheSize = 64

// BankIO8 is implemented by every device that can be mapped on a Table.
// Addresses are relative to the start of the mapping.
type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

// Flasher is implemented by devices that support bulk initialization.
type Flasher interface {
	Flash(buf []byte) error
}

// A Mapping assigns the inclusive address range [Start, End] to a device.
type Mapping struct {
	Start uint16
	End   uint16
	Dev   BankIO8
	Name  string
}

func (m Mapping) Size() int { return int(m.End) - int(m.Start) + 1 }

// Stats are the diagnostic counters of a Table.
type Stats struct {
	Accesses uint64
	Hits     uint64
	CacheLen int
	CacheCap int
}

func (s Stats) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses)
}

type Option func(*Table)

// WithCacheSize sets the number of cached addresses, 0 disables the cache.
func WithCacheSize(n int) Option {
	return func(t *Table) { t.cacheCap = max(n, 0) }
}

// Table is the address decoder: it routes every access to the device
// mapped at that address. The set of mappings can't change after
// construction.
type Table struct {
	Name string

	maps []Mapping // sorted by Start

	// Resolved addresses (absolute address -> index in maps). Eviction is
	// in insertion order, fifo[next] being the oldest entry once full.
	cache    map[uint16]int
	fifo     []uint16
	next     int
	cacheCap int

	accesses uint64
	hits     uint64
}

// NewTable creates a Table with the given mappings, which must not overlap.
func NewTable(name string, maps []Mapping, opts ...Option) (*Table, error) {
	t := &Table{
		Name:     name,
		maps:     slices.Clone(maps),
		cacheCap: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(t)
	}

	slices.SortFunc(t.maps, func(a, b Mapping) int { return int(a.Start) - int(b.Start) })
	for i, m := range t.maps {
		if m.Dev == nil {
			return nil, hwerr.Constructionf("bus", "new", "%s: nil device", m.Name)
		}
		if m.Start > m.End {
			return nil, hwerr.Constructionf("bus", "new", "%s: start $%04X > end $%04X", m.Name, m.Start, m.End)
		}
		if i > 0 && t.maps[i-1].End >= m.Start {
			prev := t.maps[i-1]
			return nil, hwerr.Constructionf("bus", "new", "%s [$%04X-$%04X] overlaps %s [$%04X-$%04X]",
				m.Name, m.Start, m.End, prev.Name, prev.Start, prev.End)
		}
		log.ModBus.DebugZ("mapping device").
			String("bus", name).
			String("area", m.Name).
			Hex16("start", m.Start).
			Hex16("end", m.End).
			End()
	}
	t.ClearCache()
	return t, nil
}

func (t *Table) search(addr uint16) int {
	i, found := slices.BinarySearchFunc(t.maps, addr, func(m Mapping, addr uint16) int {
		switch {
		case m.End < addr:
			return -1
		case m.Start > addr:
			return 1
		}
		return 0
	})
	if !found {
		return -1
	}
	return i
}

func (t *Table) lookup(addr uint16) int {
	t.accesses++
	if idx, ok := t.cache[addr]; ok {
		t.hits++
		return idx
	}
	idx := t.search(addr)
	if idx < 0 || t.cacheCap == 0 {
		return idx
	}
	if len(t.fifo) < t.cacheCap {
		t.fifo = append(t.fifo, addr)
	} else {
		delete(t.cache, t.fifo[t.next])
		t.fifo[t.next] = addr
		t.next = (t.next + 1) % t.cacheCap
	}
	t.cache[addr] = idx
	return idx
}

// Resolve returns the mapping containing addr and the offset of addr within
// it. It goes through the cache, like a regular access.
func (t *Table) Resolve(addr uint16) (Mapping, uint16, bool) {
	idx := t.lookup(addr)
	if idx < 0 {
		return Mapping{}, 0, false
	}
	m := t.maps[idx]
	return m, addr - m.Start, true
}

// Read8 forwards the read to the device mapped at addr. Unmapped addresses
// read as 0.
func (t *Table) Read8(addr uint16) uint8 {
	idx := t.lookup(addr)
	if idx < 0 {
		if logUnmapped {
			log.ModBus.ErrorZ("unmapped Read8").
				String("name", t.Name).
				Hex16("addr", addr).
				End()
		}
		return 0
	}
	m := &t.maps[idx]
	return m.Dev.Read8(addr-m.Start, false)
}

// Peek8 reads without side effects. It bypasses the cache and leaves the
// statistics untouched.
func (t *Table) Peek8(addr uint16) uint8 {
	idx := t.search(addr)
	if idx < 0 {
		return 0
	}
	m := &t.maps[idx]
	return m.Dev.Read8(addr-m.Start, true)
}

// Write8 forwards the write to the device mapped at addr. Writes to
// unmapped addresses are discarded.
func (t *Table) Write8(addr uint16, val uint8) {
	idx := t.lookup(addr)
	if idx < 0 {
		if logUnmapped {
			log.ModBus.ErrorZ("unmapped Write8").
				String("name", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		return
	}
	m := &t.maps[idx]
	m.Dev.Write8(addr-m.Start, val)
}

// Read16 reads a little endian word.
func (t *Table) Read16(addr uint16) uint16 {
	lo := t.Read8(addr)
	hi := t.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Mappings returns a copy of the mapping table, sorted by address.
func (t *Table) Mappings() []Mapping {
	return slices.Clone(t.maps)
}

func (t *Table) Stats() Stats {
	return Stats{
		Accesses: t.accesses,
		Hits:     t.hits,
		CacheLen: len(t.cache),
		CacheCap: t.cacheCap,
	}
}

// ClearCache empties the address cache and resets the counters.
func (t *Table) ClearCache() {
	t.cache = make(map[uint16]int, t.cacheCap)
	t.fifo = make([]uint16, 0, t.cacheCap)
	t.next = 0
	t.accesses = 0
	t.hits = 0
}

func (t *Table) Inspect() inspect.Report {
	st := t.Stats()
	r := inspect.Report{
		ID:   "bus:" + t.Name,
		Type: "bus",
		Name: t.Name,
		Stats: []inspect.Field{
			{Name: "accesses", Value: strconv.FormatUint(st.Accesses, 10)},
			{Name: "hits", Value: strconv.FormatUint(st.Hits, 10)},
			{Name: "hitrate", Value: strconv.FormatFloat(st.HitRate()*100, 'f', 1, 64) + "%"},
			{Name: "cache", Value: strconv.Itoa(st.CacheLen) + "/" + strconv.Itoa(st.CacheCap)},
		},
	}
	for _, m := range t.maps {
		r.Registers = append(r.Registers, inspect.Field{
			Name:  m.Name,
			Value: inspect.Hex16(m.Start) + "-" + inspect.Hex16(m.End),
		})
	}
	return r
}

func (t *Table) Snapshot() snapshot.Bus {
	s := snapshot.Bus{
		Version:  snapshot.BusVersion,
		Name:     t.Name,
		Accesses: int64(t.accesses),
		Hits:     int64(t.hits),
	}
	for _, m := range t.maps {
		s.Mappings = append(s.Mappings, snapshot.Mapping{
			Name:  m.Name,
			Start: int(m.Start),
			End:   int(m.End),
		})
	}
	return s
}

// CheckSnapshot migrates s and verifies it describes the same layout as t,
// without modifying t.
func (t *Table) CheckSnapshot(s snapshot.Bus) (snapshot.Bus, error) {
	s, err := snapshot.MigrateBus(s)
	if err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	if len(s.Mappings) != len(t.maps) {
		return s, hwerr.Statef("bus", "restore", "snapshot has %d mappings, bus has %d", len(s.Mappings), len(t.maps))
	}
	for i, sm := range s.Mappings {
		m := t.maps[i]
		if sm.Name != m.Name || sm.Start != int(m.Start) || sm.End != int(m.End) {
			return s, hwerr.Statef("bus", "restore", "mapping %d: snapshot has %s [$%04X-$%04X], bus has %s [$%04X-$%04X]",
				i, sm.Name, sm.Start, sm.End, m.Name, m.Start, m.End)
		}
	}
	return s, nil
}

// Restore applies the counters of a bus snapshot. The snapshot must
// describe the same layout as t. The cache is emptied.
func (t *Table) Restore(s snapshot.Bus) error {
	s, err := t.CheckSnapshot(s)
	if err != nil {
		return err
	}

	t.ClearCache()
	t.accesses = uint64(s.Accesses)
	t.hits = uint64(s.Hits)
	return nil
}
