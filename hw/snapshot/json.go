package snapshot

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"emu65/hw/hwerr"
)

func boolFlag(v int) bool { return v != 0 }

// decodeFlag accepts either a 0/1 number or a boolean.
func decodeFlag(d *jx.Decoder) (int, error) {
	switch t := d.Next(); t {
	case jx.Bool:
		b, err := d.Bool()
		if err != nil {
			return 0, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case jx.Number:
		return d.Int()
	default:
		return 0, errors.Errorf("flag: unexpected %s", t)
	}
}

func (s *CPU) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Str(s.Version) })
		e.Field("pc", func(e *jx.Encoder) { e.Int(s.PC) })
		e.Field("a", func(e *jx.Encoder) { e.Int(s.A) })
		e.Field("x", func(e *jx.Encoder) { e.Int(s.X) })
		e.Field("y", func(e *jx.Encoder) { e.Int(s.Y) })
		e.Field("s", func(e *jx.Encoder) { e.Int(s.S) })
		if s.Version == "1" {
			e.Field("p", func(e *jx.Encoder) { e.Int(s.P) })
		} else {
			e.Field("n", func(e *jx.Encoder) { e.Bool(boolFlag(s.N)) })
			e.Field("z", func(e *jx.Encoder) { e.Bool(boolFlag(s.Z)) })
			e.Field("c", func(e *jx.Encoder) { e.Bool(boolFlag(s.C)) })
			e.Field("v", func(e *jx.Encoder) { e.Bool(boolFlag(s.V)) })
			e.Field("i", func(e *jx.Encoder) { e.Bool(boolFlag(s.I)) })
			e.Field("d", func(e *jx.Encoder) { e.Bool(boolFlag(s.D)) })
		}
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(s.Cycles) })
		e.Field("opcode", func(e *jx.Encoder) { e.Int(s.Opcode) })
		e.Field("irq", func(e *jx.Encoder) { e.Bool(s.IRQ) })
		e.Field("nmi", func(e *jx.Encoder) { e.Bool(s.NMI) })
		e.Field("pendingIrq", func(e *jx.Encoder) { e.Bool(s.PendingIRQ) })
		e.Field("pendingNmi", func(e *jx.Encoder) { e.Bool(s.PendingNMI) })
	})
}

func (s *CPU) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Str()
		case "pc":
			s.PC, err = d.Int()
		case "a":
			s.A, err = d.Int()
		case "x":
			s.X, err = d.Int()
		case "y":
			s.Y, err = d.Int()
		case "s":
			s.S, err = d.Int()
		case "p":
			s.P, err = d.Int()
		case "n":
			s.N, err = decodeFlag(d)
		case "z":
			s.Z, err = decodeFlag(d)
		case "c":
			s.C, err = decodeFlag(d)
		case "v":
			s.V, err = decodeFlag(d)
		case "i":
			s.I, err = decodeFlag(d)
		case "d":
			s.D, err = decodeFlag(d)
		case "cycles":
			s.Cycles, err = d.Int64()
		case "opcode":
			s.Opcode, err = d.Int()
		case "irq":
			s.IRQ, err = d.Bool()
		case "nmi":
			s.NMI, err = d.Bool()
		case "pendingIrq":
			s.PendingIRQ, err = d.Bool()
		case "pendingNmi":
			s.PendingNMI, err = d.Bool()
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
}

func (s *Clock) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Str(s.Version) })
		e.Field("frequencyMHz", func(e *jx.Encoder) { e.Float64(s.FrequencyMHz) })
		e.Field("stepNanos", func(e *jx.Encoder) { e.Int64(s.StepNanos) })
		e.Field("running", func(e *jx.Encoder) { e.Bool(s.Running) })
		e.Field("paused", func(e *jx.Encoder) { e.Bool(s.Paused) })
		e.Field("elapsedNanos", func(e *jx.Encoder) { e.Int64(s.ElapsedNano) })
		e.Field("pausedNanos", func(e *jx.Encoder) { e.Int64(s.PausedNano) })
		e.Field("totalCycles", func(e *jx.Encoder) { e.Int64(s.TotalCycles) })
		e.Field("iterations", func(e *jx.Encoder) { e.Int64(s.Iterations) })
		e.Field("clampCount", func(e *jx.Encoder) { e.Int64(s.ClampCount) })
		e.Field("budget", func(e *jx.Encoder) { e.Int64(s.Budget) })
		e.Field("fraction", func(e *jx.Encoder) { e.Float64(s.Fraction) })
		if s.Version == "1" {
			return
		}
		e.Field("samples", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range s.Samples {
					e.Int64(v)
				}
			})
		})
		e.Field("driftCompensation", func(e *jx.Encoder) { e.Float64(s.DriftCompensation) })
		e.Field("waitNanos", func(e *jx.Encoder) { e.Int64(s.WaitNanos) })
		e.Field("drift", func(e *jx.Encoder) { e.Float64(s.Drift) })
	})
}

func (s *Clock) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Str()
		case "frequencyMHz":
			s.FrequencyMHz, err = d.Float64()
		case "stepNanos":
			s.StepNanos, err = d.Int64()
		case "running":
			s.Running, err = d.Bool()
		case "paused":
			s.Paused, err = d.Bool()
		case "elapsedNanos":
			s.ElapsedNano, err = d.Int64()
		case "pausedNanos":
			s.PausedNano, err = d.Int64()
		case "totalCycles":
			s.TotalCycles, err = d.Int64()
		case "iterations":
			s.Iterations, err = d.Int64()
		case "clampCount":
			s.ClampCount, err = d.Int64()
		case "budget":
			s.Budget, err = d.Int64()
		case "fraction":
			s.Fraction, err = d.Float64()
		case "samples":
			s.Samples = []int64{}
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := d.Int64()
				s.Samples = append(s.Samples, v)
				return err
			})
		case "driftCompensation":
			s.DriftCompensation, err = d.Float64()
		case "waitNanos":
			s.WaitNanos, err = d.Int64()
		case "drift":
			s.Drift, err = d.Float64()
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
}

func (s *Bus) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Str(s.Version) })
		e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
		e.Field("mappings", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, m := range s.Mappings {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(m.Name) })
						e.Field("start", func(e *jx.Encoder) { e.Int(m.Start) })
						e.Field("end", func(e *jx.Encoder) { e.Int(m.End) })
					})
				}
			})
		})
		e.Field("accesses", func(e *jx.Encoder) { e.Int64(s.Accesses) })
		e.Field("hits", func(e *jx.Encoder) { e.Int64(s.Hits) })
	})
}

func (m *Mapping) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			m.Name, err = d.Str()
		case "start":
			m.Start, err = d.Int()
		case "end":
			m.End, err = d.Int()
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
}

func (s *Bus) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Str()
		case "name":
			s.Name, err = d.Str()
		case "mappings":
			s.Mappings = nil
			err = d.Arr(func(d *jx.Decoder) error {
				var m Mapping
				if err := m.decode(d); err != nil {
					return err
				}
				s.Mappings = append(s.Mappings, m)
				return nil
			})
		case "accesses":
			s.Accesses, err = d.Int64()
		case "hits":
			s.Hits, err = d.Int64()
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
}

func (s *Mem) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Str(s.Version) })
		e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
		e.Field("base", func(e *jx.Encoder) { e.Int(s.Base) })
		e.Field("readOnly", func(e *jx.Encoder) { e.Bool(s.ReadOnly) })
		e.Field("data", func(e *jx.Encoder) { e.Base64(s.Data) })
	})
}

func (s *Mem) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Str()
		case "name":
			s.Name, err = d.Str()
		case "base":
			s.Base, err = d.Int()
		case "readOnly":
			s.ReadOnly, err = d.Bool()
		case "data":
			s.Data, err = d.Base64()
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
}

func (s *Machine) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Str(s.Version) })
		e.Field("cpu", s.CPU.Encode)
		e.Field("clock", s.Clock.Encode)
		if s.Bus != nil {
			e.Field("bus", s.Bus.Encode)
		}
		e.Field("memory", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range s.Memory {
					s.Memory[i].Encode(e)
				}
			})
		})
	})
}

func (s *Machine) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Str()
		case "cpu":
			err = s.CPU.Decode(d)
		case "clock":
			err = s.Clock.Decode(d)
		case "bus":
			s.Bus = new(Bus)
			err = s.Bus.Decode(d)
		case "memory":
			s.Memory = nil
			err = d.Arr(func(d *jx.Decoder) error {
				var m Mem
				if err := m.Decode(d); err != nil {
					return err
				}
				s.Memory = append(s.Memory, m)
				return nil
			})
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
}

// Marshal encodes the machine snapshot as JSON.
func Marshal(s *Machine) []byte {
	var e jx.Encoder
	e.SetIdent(2)
	s.Encode(&e)
	return e.Bytes()
}

// Unmarshal decodes a machine snapshot, migrates each component to its
// current version and validates the result.
func Unmarshal(buf []byte) (*Machine, error) {
	var s Machine
	if err := s.Decode(jx.DecodeBytes(buf)); err != nil {
		return nil, hwerr.Wrap(hwerr.KindState, "machine", "decode", err, "malformed snapshot")
	}
	if s.Version != MachineVersion {
		return nil, hwerr.Migrationf("machine", "migrate", "no migration from version %q to %q", s.Version, MachineVersion)
	}

	var err error
	if s.CPU, err = MigrateCPU(s.CPU); err != nil {
		return nil, err
	}
	if s.Clock, err = MigrateClock(s.Clock); err != nil {
		return nil, err
	}
	if s.Bus != nil {
		bus, err := MigrateBus(*s.Bus)
		if err != nil {
			return nil, err
		}
		s.Bus = &bus
	}
	for i := range s.Memory {
		if s.Memory[i], err = MigrateMem(s.Memory[i]); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
