package interp

// InterruptKind selects which exception line a controller drives.
type InterruptKind int

const (
	IRQ InterruptKind = iota
	FIQ
)

func (k InterruptKind) String() string {
	if k == FIQ {
		return "FIQ"
	}
	return "IRQ"
}

// interruptController latches a periodic interrupt request, evaluated
// only at instruction boundaries (spec §5, §6 setInterrupt). Mirrors
// bytecodeinterpreter.py's interruptParams {b, a, t0, type} plus
// lastInterruptCycle, generalized to IRQ and FIQ independently so both
// can be configured at once.
type interruptController struct {
	active bool
	kind   InterruptKind
	delay  int64 // cycles to wait before the first interrupt ("b")
	period int64 // cycles between subsequent interrupts ("a"); <=0 means one-shot
	epoch  int64 // cycle count defining t=0 ("t0")
	last   int64 // elapsed cycles (one-shot) or tick index (periodic) of the last delivered interrupt; -1 if none yet
}

// set installs new parameters, mirroring setInterrupt's negative-epoch
// "bind to the current cycle count" rule.
func (c *interruptController) set(kind InterruptKind, clear bool, delay, period int64, epoch int64, currentCycles uint64) {
	c.active = !clear
	c.kind = kind
	c.delay = delay
	c.period = period
	if epoch < 0 {
		c.epoch = int64(currentCycles)
	} else {
		c.epoch = epoch
	}
	c.last = -1
}

// due reports whether this controller's interrupt should fire at the
// given cycle count, and advances its internal "last fired" bookkeeping
// if so. Evaluated once per instruction boundary by Interpreter.Step.
func (c *interruptController) due(cycles uint64) bool {
	if !c.active {
		return false
	}
	elapsed := int64(cycles) - c.epoch
	if elapsed < c.delay {
		return false
	}
	if c.period <= 0 {
		if c.last >= 0 {
			return false
		}
		c.last = elapsed
		return true
	}
	sinceFirst := elapsed - c.delay
	tick := sinceFirst / c.period
	if sinceFirst%c.period != 0 {
		return false
	}
	if tick <= c.last {
		return false
	}
	c.last = tick
	return true
}
