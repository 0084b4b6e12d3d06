// Package rie implements the register-machine instruction encoder: label
// resolution, peephole optimization (result relinking, eqz/compare+branch
// fusion), copy- and return-sequence encoding, register-list chunking,
// defragmentation, and fuel accounting for a Wasm bytecode translator.
package rie
