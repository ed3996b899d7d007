package mapper

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMapper is returned by New for mapper/submapper numbers no
// constructor has been registered for.
var ErrUnsupportedMapper = errors.New("mapper: unsupported mapper/submapper number")

// Constructor builds a Mapper's Memory and the Mapper itself from the raw
// PRG/CHR ROM buffers a cartridge loader has already carved out.
type Constructor func(prgRom, chrRom []byte) (Mapper, *Memory)

type registryKey struct {
	number    int
	submapper int
}

var registry = map[registryKey]Constructor{}

// Register installs a mapper constructor under the given iNES/NES2.0
// mapper number and submapper number. Pass submapper -1 to match any
// submapper not otherwise registered for that mapper number.
func Register(number, submapper int, ctor Constructor) {
	registry[registryKey{number: number, submapper: submapper}] = ctor
}

// New resolves a mapper/submapper number pair to a constructed Mapper and
// its Memory. Unregistered numbers return ErrUnsupportedMapper.
func New(number, submapper int, prgRom, chrRom []byte) (Mapper, *Memory, error) {
	if ctor, ok := registry[registryKey{number: number, submapper: submapper}]; ok {
		m, mem := ctor(prgRom, chrRom)
		return m, mem, nil
	}
	if ctor, ok := registry[registryKey{number: number, submapper: -1}]; ok {
		m, mem := ctor(prgRom, chrRom)
		return m, mem, nil
	}
	return nil, nil, fmt.Errorf("%w: mapper %d submapper %d", ErrUnsupportedMapper, number, submapper)
}
