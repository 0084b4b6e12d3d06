package rie

// FuelInfo tells an encode call whether fuel metering is active for the
// current block and, if so, which ConsumeFuel instruction to bump.
//
// Grounded on spec.md §4.10: "every encode call accepts a fuel descriptor
// for the enclosing block; no-op when metering is disabled."
type FuelInfo struct {
	enabled bool
	instr   Instr
	costs   FuelCosts
}

// NoFuel builds a FuelInfo for a block with metering disabled.
func NoFuel() FuelInfo { return FuelInfo{} }

// FuelAt builds a FuelInfo pointing at the ConsumeFuel word for the
// enclosing block, priced against costs.
func FuelAt(instr Instr, costs FuelCosts) FuelInfo {
	return FuelInfo{enabled: true, instr: instr, costs: costs}
}

// Enabled reports whether metering is active.
func (f FuelInfo) Enabled() bool { return f.enabled }

// bumpFuel charges delta fuel against f's ConsumeFuel word, a no-op if
// metering is disabled for this block.
func (e *Encoder) bumpFuel(f FuelInfo, delta uint64) error {
	if !f.enabled {
		return nil
	}
	word := e.instrs.get(f.instr)
	return word.bumpFuelConsumption(delta)
}

// bumpFuelBase charges the block's base per-instruction cost.
func (e *Encoder) bumpFuelBase(f FuelInfo) error {
	if !f.enabled {
		return nil
	}
	return e.bumpFuel(f, f.costs.Base())
}

// bumpFuelCopies charges the amortized cost of an n-way copy/return.
func (e *Encoder) bumpFuelCopies(f FuelInfo, n uint64) error {
	if !f.enabled {
		return nil
	}
	return e.bumpFuel(f, f.costs.FuelForCopies(n))
}
