// Package cartridge parses iNES/NES2.0 ROM images, resolves the declared
// mapper/submapper through pkg/mapper's registry, and manages save-RAM
// persistence across loads.
package cartridge

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/wrenfield/nesmapper/pkg/mapper"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

const (
	inesHeaderSize = 16
	prgROMBankSize = 16384
	chrROMBankSize = 8192
	trainerSize    = 512

	inesMagic = "NES\x1a"

	// nes2FormatMask distinguishes the NES 2.0 header extension from
	// plain iNES in byte 7's low nibble.
	nes2FormatMask = 0x0C
	nes2FormatTag  = 0x08
)

// Cartridge is a loaded ROM image: its parsed header, resolved mapper,
// and the mapper's memory pair.
type Cartridge struct {
	Mapper mapper.Mapper
	Memory *mapper.Memory

	MapperNumber    int
	SubmapperNumber int
	PrgBanks        uint8
	ChrBanks        uint8
	HasSaveRam      bool

	savePath string
}

// Load reads an iNES/NES2.0 ROM file, resolves its mapper, and loads any
// existing `.sav` battery-backed RAM image sitting next to it.
func Load(filename string) (*Cartridge, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cartridge: reading ROM file: %w", err)
	}
	cart, err := LoadFromBytes(data)
	if err != nil {
		return nil, err
	}
	cart.savePath = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".sav"
	if cart.HasSaveRam {
		cart.loadSaveRam()
	}
	return cart, nil
}

// LoadFromBytes parses an iNES/NES2.0 ROM image already read into memory
// and constructs its mapper. No save-RAM file is associated, so
// FlushSaveRam on the result does nothing; Load is the entry point that
// attaches a `.sav` path.
func LoadFromBytes(data []byte) (*Cartridge, error) {
	if len(data) < inesHeaderSize {
		return nil, fmt.Errorf("cartridge: file too small to be a valid iNES ROM")
	}
	if string(data[0:4]) != inesMagic {
		return nil, fmt.Errorf("cartridge: invalid iNES header magic: expected %q, got %q", inesMagic, string(data[0:4]))
	}

	h := parseHeader(data)

	offset := inesHeaderSize
	if h.hasTrainer {
		offset += trainerSize
	}

	prgSize := int(h.prgBanks) * prgROMBankSize
	if len(data) < offset+prgSize {
		return nil, fmt.Errorf("cartridge: file too small for PRG-ROM data")
	}
	prgRom := data[offset : offset+prgSize]
	offset += prgSize

	chrSize := int(h.chrBanks) * chrROMBankSize
	var chrRom []byte
	if chrSize > 0 {
		if len(data) < offset+chrSize {
			return nil, fmt.Errorf("cartridge: file too small for CHR-ROM data")
		}
		chrRom = data[offset : offset+chrSize]
	}

	m, mem, err := mapper.New(h.mapperNumber, h.submapperNumber, prgRom, chrRom)
	if err != nil {
		return nil, err
	}
	m.InitMapperParams(mem)
	mem.RebuildIfDirty()

	if h.fourScreen {
		// True four-screen VRAM needs a cartridge-RAM-backed nametable
		// assignment this package does not wire up; the mapper's own
		// hardcoded InitialMirroring (already installed by mapper.New)
		// is left in place instead of being overridden below.
		log.Printf("cartridge: four-screen mirroring declared but not implemented, using mapper default")
	} else if h.verticalMirroring {
		mem.Chr.SetMirroring(memory.Vertical())
	} else {
		mem.Chr.SetMirroring(memory.Horizontal())
	}
	mem.RebuildIfDirty()

	return &Cartridge{
		Mapper:          m,
		Memory:          mem,
		MapperNumber:    h.mapperNumber,
		SubmapperNumber: h.submapperNumber,
		PrgBanks:        h.prgBanks,
		ChrBanks:        h.chrBanks,
		HasSaveRam:      h.hasSaveRam,
	}, nil
}

type header struct {
	prgBanks          uint8
	chrBanks          uint8
	mapperNumber      int
	submapperNumber   int
	verticalMirroring bool
	fourScreen        bool
	hasSaveRam        bool
	hasTrainer        bool
	isNes2            bool
}

// parseHeader extracts the 16-byte iNES header, including the NES2.0
// submapper and mapper bits 8-11 from byte 8 when byte 7 declares the
// NES2.0 format tag. The NES2.0 RAM-size fields are not parsed.
func parseHeader(data []byte) header {
	var h header
	h.prgBanks = data[4]
	h.chrBanks = data[5]

	flags6 := data[6]
	flags7 := data[7]

	h.verticalMirroring = flags6&0x01 != 0
	h.hasSaveRam = flags6&0x02 != 0
	h.hasTrainer = flags6&0x04 != 0
	h.fourScreen = flags6&0x08 != 0

	mapperLow := (flags6 & 0xF0) >> 4
	mapperHigh := flags7 & 0xF0
	h.mapperNumber = int(mapperHigh | mapperLow)

	h.isNes2 = flags7&nes2FormatMask == nes2FormatTag
	if h.isNes2 && len(data) > 8 {
		flags8 := data[8]
		mapperTop := uint16(flags8&0x0F) << 8
		h.mapperNumber = int(mapperTop) | h.mapperNumber
		h.submapperNumber = int(flags8 >> 4)
	} else {
		h.submapperNumber = -1
	}
	return h
}

// saveRamBuffer is the byte region battery persistence covers: the
// dedicated save-RAM chip when the mapper has one, otherwise the work RAM
// backing the 0x6000 window.
func (c *Cartridge) saveRamBuffer() []byte {
	if buf := c.Memory.Prg.SaveRam(); len(buf) > 0 {
		return buf
	}
	return c.Memory.Prg.WorkRam()
}

func (c *Cartridge) loadSaveRam() {
	data, err := os.ReadFile(c.savePath)
	if err != nil {
		return
	}
	copy(c.saveRamBuffer(), data)
}

// FlushSaveRam writes the cartridge's save-RAM buffer to its `.sav` path,
// if one was set by Load and the cartridge is battery-backed. Failures
// are logged, not returned: this is a best-effort side effect, not a
// condition the emulation loop should halt over.
func (c *Cartridge) FlushSaveRam() {
	if !c.HasSaveRam || c.savePath == "" {
		return
	}
	buf := c.saveRamBuffer()
	if len(buf) == 0 {
		return
	}
	if err := os.WriteFile(c.savePath, buf, 0o644); err != nil {
		log.Printf("cartridge: flushing save RAM to %s: %v", c.savePath, err)
	}
}
