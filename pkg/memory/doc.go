// Package memory implements the bank-window memory model shared by every
// mapper: windows, layouts, the precomputed MemoryMap page table, and the
// PrgMemory/ChrMemory objects that own the raw backing buffers.
package memory
