package history

import (
	"encoding/gob"
	"os"

	"armsim/pkg/cpu"
)

// Checkpoint holds everything needed to resume an interpreter session:
// the recorded journal plus the live register/memory/cycle state at the
// moment of saving (mirrors the teacher's result.Checkpoint shape).
type Checkpoint struct {
	Entries []cpu.Delta
	Regs    cpu.RegisterBankSnapshot
	Mem     map[uint32]uint8
	Cycles  uint64
}

func init() {
	gob.Register(cpu.Delta{})
	gob.Register(cpu.Flags{})
	gob.Register(cpu.RegisterBankSnapshot{})
}

// SaveCheckpoint writes a session snapshot to path.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint reads a session snapshot back from path.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}

// Snapshot captures j and the live executor state into a Checkpoint.
func Snapshot(j *Journal, x *cpu.Executor) *Checkpoint {
	return &Checkpoint{
		Entries: append([]cpu.Delta(nil), j.entries...),
		Regs:    x.Regs.Snapshot(),
		Mem:     x.Mem.Snapshot(),
		Cycles:  x.Cycles,
	}
}

// Restore installs ckpt's registers, memory and cycle count into x,
// replacing its current contents, and returns a new Journal holding
// ckpt's entries.
func Restore(ckpt *Checkpoint, x *cpu.Executor) *Journal {
	x.Regs.RestoreSnapshot(ckpt.Regs)
	x.Mem.RestoreSnapshot(ckpt.Mem)
	x.Cycles = ckpt.Cycles
	return &Journal{entries: append([]cpu.Delta(nil), ckpt.Entries...)}
}
