package rie

import (
	"fmt"
	"math"
)

// Instr is an opaque index into an InstrSequence. Any Instr produced by the
// encoder refers to a currently-present instruction until the sequence is
// drained or reset (spec §3 "Instruction handle").
//
// Grounded on wasmi's Instr(u32) in instr_encoder.rs: a from/into-usize
// newtype with an absolute-distance helper, used here instead of a raw
// slice index so push_before's shift semantics can't be confused with a
// plain int.
type Instr uint32

// InstrFromUsize builds an Instr from a usize-sized index, panicking if the
// index does not fit in 32 bits. Used by InstrSequence.nextInstr and by tests.
func InstrFromUsize(v int) Instr {
	if v < 0 || uint64(v) > math.MaxUint32 {
		panic(fmt.Sprintf("rie: invalid instruction index %d", v))
	}
	return Instr(v)
}

// IntoUsize returns the usize representation of the instruction index.
func (i Instr) IntoUsize() int {
	return int(i)
}

// Distance returns the absolute distance between i and other: 0 if equal,
// 1 if adjacent, etc.
func (i Instr) Distance(other Instr) uint32 {
	if i > other {
		return uint32(i - other)
	}
	return uint32(other - i)
}

// InstrSequence is the append-only (plus bounded insert-before) vector of
// instruction words the encoder owns (spec §4.1).
//
// Grounded on wasmi's InstrSequence (instr_encoder.rs) and on the two-phase
// emit/resolve shape of internal/engine/wazevo/backend/isa/amd64/machine.go
// (Encode then ResolveRelocations).
type InstrSequence struct {
	words []Instruction
}

// nextInstr returns the handle the next pushed word would receive.
func (s *InstrSequence) nextInstr() Instr {
	return InstrFromUsize(len(s.words))
}

// push appends word and returns its handle. Fails with ErrTooManyInstructions
// if the handle would overflow.
func (s *InstrSequence) push(word Instruction) (Instr, error) {
	if len(s.words) >= math.MaxUint32 {
		return 0, newError(ErrTooManyInstructions, "cannot push beyond %d instructions", math.MaxUint32)
	}
	instr := s.nextInstr()
	s.words = append(s.words, word)
	return instr, nil
}

// pushBefore inserts word at the position handle currently occupies,
// shifting handle and everything after it forward by one. Returns the
// handle where the previously-at-handle word now lives (handle+1).
//
// O(n) tail shift: spec §4.1 warns callers to only use this near the end of
// the sequence.
func (s *InstrSequence) pushBefore(handle Instr, word Instruction) (Instr, error) {
	idx := handle.IntoUsize()
	if uint64(len(s.words))+1 > math.MaxUint32 {
		return 0, newError(ErrTooManyInstructions, "pushed too many instructions to a single function")
	}
	s.words = append(s.words, Instruction{})
	copy(s.words[idx+1:], s.words[idx:len(s.words)-1])
	s.words[idx] = word
	return handle + 1, nil
}

// get returns the instruction word at handle. Out-of-range is a programmer
// error: the encoder never hands out a handle it cannot later resolve.
func (s *InstrSequence) get(handle Instr) *Instruction {
	idx := handle.IntoUsize()
	if idx < 0 || idx >= len(s.words) {
		panic(fmt.Sprintf("rie: BUG: instruction handle %d out of range (len=%d)", idx, len(s.words)))
	}
	return &s.words[idx]
}

// tailFrom returns a mutable slice of every word from handle to the end,
// inclusive, in encounter order. Used by defragmentation.
func (s *InstrSequence) tailFrom(handle Instr) []Instruction {
	idx := handle.IntoUsize()
	if idx < 0 || idx > len(s.words) {
		panic(fmt.Sprintf("rie: BUG: instruction handle %d out of range (len=%d)", idx, len(s.words)))
	}
	return s.words[idx:]
}

// drain returns every word in insertion order and empties the sequence.
func (s *InstrSequence) drain() []Instruction {
	words := s.words
	s.words = nil
	return words
}

// reset empties the sequence without returning its contents.
func (s *InstrSequence) reset() {
	s.words = s.words[:0]
}

// len reports the number of words currently held.
func (s *InstrSequence) len() int {
	return len(s.words)
}
