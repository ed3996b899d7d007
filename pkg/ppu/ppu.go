// Package ppu implements the PPU's CPU-visible register file and the
// address-bus timing that drives it. Pixel and color
// output are out of this module's scope: the PPU stops at producing the
// nametable/pattern-table/palette bytes a mapper's address-bus hooks and
// the CHR memory pipeline can observe, never at compositing them into a
// frame buffer.
package ppu

import (
	"github.com/wrenfield/nesmapper/pkg/mapper"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// oamSpriteCount is the hardware's 8-sprites-per-scanline limit, past
// which SetSpriteOverflow is set and a much buggier evaluation algorithm
// takes over on real hardware; this implementation stops at the correct
// flag and count, the bug's emergent garbage sprite entries are not
// reproduced.
const oamSpriteCount = 8

// spriteEntry is one secondary-OAM row surviving evaluation, enough to
// regenerate the pattern-table fetch addresses cycles 257-320 drive.
type spriteEntry struct {
	y, tile, attributes, x byte
	isSpriteZero           bool
}

// PPU owns the CPU-visible PPUCTRL/PPUMASK/PPUSTATUS/OAMADDR/PPUSCROLL/
// PPUADDR/PPUDATA register file, primary OAM, and the internal palette
// RAM, and drives the scanline/cycle counters that generate the PPU's
// address bus the way real hardware does during background and sprite
// tile fetches.
type PPU struct {
	control PPUControl
	mask    PPUMask
	status  PPUStatus

	vramAddress LoopyRegister
	tempAddress LoopyRegister
	fineX       uint8
	addressLatch bool

	oam       [256]byte
	oamAddr   uint8
	secondary [oamSpriteCount]spriteEntry
	spriteCnt int

	paletteRam [32]byte

	dataBuffer byte

	bgNextTileID   byte
	bgNextTileAttr byte
	bgNextTileLSB  byte
	bgNextTileMSB  byte

	scanline int16
	cycle    int16
	frame    uint64

	nmiOutput   bool
	frameReady  bool

	mp  mapper.Mapper
	mem *mapper.Memory
}

// New builds a PPU wired to the cartridge's mapper and memory; every
// nametable/pattern/palette access it performs is routed through mp's
// address-bus hooks exactly as the real PPU's address pins would drive
// them.
func New(mp mapper.Mapper, mem *mapper.Memory) *PPU {
	return &PPU{mp: mp, mem: mem}
}

// Reset returns the PPU to power-on state.
func (p *PPU) Reset() {
	*p = PPU{mp: p.mp, mem: p.mem}
}

// ReadCPURegister services a CPU read of $2000-$2007 (mirrored every 8
// bytes through $3FFF). The mask in the returned ReadResult marks which
// bits this register actually determines; the caller composites the rest
// against its own open-bus latch.
func (p *PPU) ReadCPURegister(addr uint16) memory.ReadResult {
	switch addr & 0x2007 {
	case 0x2002:
		result := memory.ReadResult{Value: p.status.Get(), Mask: 0xE0}
		p.status.SetVBlank(false)
		p.addressLatch = false
		return result
	case 0x2004:
		return memory.FullByte(p.oam[p.oamAddr])
	case 0x2007:
		value := p.dataBuffer
		addr := p.vramAddress.Get()
		p.dataBuffer = p.ppuRead(addr)
		if addr >= 0x3F00 {
			// Palette reads bypass the one-deep buffer - the buffer is
			// rewritten with what the would-be-mirrored nametable byte
			// underneath the palette window would have returned.
			value = p.dataBuffer
			p.dataBuffer = p.ppuRead(addr - 0x1000)
		}
		p.vramAddress.Set(p.vramAddress.Get() + p.control.IncrementMode())
		return memory.FullByte(value)
	default:
		return memory.OpenBus
	}
}

// WriteCPURegister services a CPU write to $2000-$2007 (mirrored every 8
// bytes through $3FFF).
func (p *PPU) WriteCPURegister(addr uint16, value byte) {
	switch addr & 0x2007 {
	case 0x2000:
		wasEnabled := p.control.EnableNMI()
		p.control.Set(value)
		p.tempAddress.SetNametableX(uint16(p.control.NametableX()))
		p.tempAddress.SetNametableY(uint16(p.control.NametableY()))
		if !wasEnabled && p.control.EnableNMI() && p.status.VBlank() {
			p.nmiOutput = true
		}
	case 0x2001:
		p.mask.Set(value)
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		if !p.addressLatch {
			p.fineX = value & 0x07
			p.tempAddress.SetCoarseX(uint16(value) >> 3)
		} else {
			p.tempAddress.SetFineY(uint16(value) & 0x07)
			p.tempAddress.SetCoarseY(uint16(value) >> 3)
		}
		p.addressLatch = !p.addressLatch
	case 0x2006:
		if !p.addressLatch {
			p.tempAddress.Set((uint16(value)&0x3F)<<8 | (p.tempAddress.Get() & 0x00FF))
		} else {
			p.tempAddress.Set((p.tempAddress.Get() & 0x7F00) | uint16(value))
			p.vramAddress.Set(p.tempAddress.Get())
		}
		p.addressLatch = !p.addressLatch
	case 0x2007:
		p.ppuWrite(p.vramAddress.Get(), value)
		p.vramAddress.Set(p.vramAddress.Get() + p.control.IncrementMode())
	}
}

// WriteOam services the byte-at-a-time write an OAM DMA transfer performs
// directly against primary OAM, independent of OAMADDR auto-increment
// quirks the $2004 path has.
func (p *PPU) WriteOam(index uint8, value byte) { p.oam[index] = value }

// TakeNMI reports and clears whether the PPU has asserted NMI since the
// last call.
func (p *PPU) TakeNMI() bool {
	v := p.nmiOutput
	p.nmiOutput = false
	return v
}

// FrameReady reports and clears whether a full frame has completed since
// the last call, for callers pacing a host loop off PPU frames.
func (p *PPU) FrameReady() bool {
	v := p.frameReady
	p.frameReady = false
	return v
}

// ppuRead is the PPU's single memory-bus entry point: every internal
// fetch, whether background, sprite, or CPU-driven through $2007, goes
// through here, so a mapper's address-bus hooks see exactly the address
// sequence real hardware would drive.
func (p *PPU) ppuRead(addr uint16) byte {
	addr &= 0x3FFF
	p.mp.OnPpuAddressChange(p.mem, addr)
	p.mem.RebuildIfDirty()
	var value byte
	if addr < 0x3F00 {
		value = p.mem.Chr.Peek(addr).Value
	} else {
		value = p.paletteRam[p.mirrorPaletteAddr(addr)]
	}
	p.mp.OnPpuRead(p.mem, addr, value)
	return value
}

func (p *PPU) ppuWrite(addr uint16, value byte) {
	addr &= 0x3FFF
	p.mp.OnPpuAddressChange(p.mem, addr)
	p.mem.RebuildIfDirty()
	if addr < 0x3F00 {
		p.mem.Chr.Write(addr, value)
	} else {
		p.paletteRam[p.mirrorPaletteAddr(addr)] = value
	}
}

// mirrorPaletteAddr folds the $3F00-$3FFF window down to 32 entries,
// mirroring every 32 bytes and aliasing the sprite-palette backdrop
// entries ($3F10/$3F14/$3F18/$3F1C) onto their background counterparts.
func (p *PPU) mirrorPaletteAddr(addr uint16) uint16 {
	a := addr & 0x1F
	if a&0x13 == 0x10 {
		a &= ^uint16(0x10)
	}
	return a
}

// Clock advances the PPU by one PPU cycle (1/3 of a CPU cycle). The
// background fetch sequence is reproduced at its
// real cycle offsets because the resulting address-bus transitions are
// what certain mappers derive their IRQ edge from; sprite pattern reads
// are all issued at cycle 320 (see fetchSpritePatterns). The fetched bytes
// themselves are discarded once they have been through ppuRead.
func (p *PPU) Clock() {
	if p.scanline >= -1 && p.scanline < 240 {
		if p.scanline == -1 && p.cycle == 1 {
			p.status.SetVBlank(false)
			p.status.SetSpriteOverflow(false)
			p.status.SetSprite0Hit(false)
		}
		// Fetch traffic and scroll updates only happen while rendering is
		// on; with both background and sprites disabled the address bus
		// sits idle, which is what keeps A12-edge IRQ counters from
		// clocking outside rendering.
		if p.mask.IsRenderingEnabled() {
			p.backgroundFetches()
			if p.cycle == 257 {
				p.evaluateSprites()
			}
			if p.cycle >= 257 && p.cycle <= 320 {
				p.fetchSpritePatterns()
			}
			if p.scanline == -1 && p.cycle >= 280 && p.cycle <= 304 {
				p.vramAddress.TransferY(&p.tempAddress)
			}
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status.SetVBlank(true)
		if p.control.EnableNMI() {
			p.nmiOutput = true
		}
	}

	p.cycle++
	if p.cycle >= 341 {
		p.cycle = 0
		p.scanline++
		if p.scanline >= 261 {
			p.scanline = -1
			p.frame++
			p.frameReady = true
		}
	}
}

// backgroundFetches reproduces the 8-cycle nametable/attribute/pattern
// fetch sequence and the coarse-X/Y increments/transfers that drive it,
// at the same cycle offsets real hardware uses.
func (p *PPU) backgroundFetches() {
	visible := (p.cycle >= 2 && p.cycle < 258) || (p.cycle >= 321 && p.cycle < 338)
	if !visible {
		if p.cycle == 256 {
			p.vramAddress.IncrementY()
		}
		if p.cycle == 257 {
			p.vramAddress.TransferX(&p.tempAddress)
		}
		if p.cycle == 338 || p.cycle == 340 {
			ntAddr := 0x2000 | (p.vramAddress.Get() & 0x0FFF)
			p.bgNextTileID = p.ppuRead(ntAddr)
		}
		return
	}

	switch (p.cycle - 1) % 8 {
	case 0:
		ntAddr := 0x2000 | (p.vramAddress.Get() & 0x0FFF)
		p.bgNextTileID = p.ppuRead(ntAddr)
	case 2:
		atAddr := 0x23C0 | (p.vramAddress.Get() & 0x0C00) |
			((p.vramAddress.Get() >> 4) & 0x38) | ((p.vramAddress.Get() >> 2) & 0x07)
		p.bgNextTileAttr = p.ppuRead(atAddr)
	case 4:
		base := p.control.BackgroundPatternTable()
		addr := base + uint16(p.bgNextTileID)*16 + p.vramAddress.FineY()
		p.bgNextTileLSB = p.ppuRead(addr)
	case 6:
		base := p.control.BackgroundPatternTable()
		addr := base + uint16(p.bgNextTileID)*16 + p.vramAddress.FineY() + 8
		p.bgNextTileMSB = p.ppuRead(addr)
	case 7:
		p.vramAddress.IncrementX()
	}

	if p.cycle == 256 {
		p.vramAddress.IncrementY()
	}
	if p.cycle == 257 {
		p.vramAddress.TransferX(&p.tempAddress)
	}
}

// evaluateSprites scans primary OAM for the up to 8 sprites visible on
// the next scanline, setting the overflow flag per the real 8-sprite
// limit. This drives the address generation fetchSpritePatterns performs
// but never composites a pixel.
func (p *PPU) evaluateSprites() {
	p.spriteCnt = 0
	height := int16(8)
	if p.control.SpriteSize() != 0 {
		height = 16
	}
	for i := 0; i < 64; i++ {
		y := int16(p.oam[i*4])
		if p.scanline < y || p.scanline >= y+height {
			continue
		}
		if p.spriteCnt < oamSpriteCount {
			p.secondary[p.spriteCnt] = spriteEntry{
				y:            p.oam[i*4],
				tile:         p.oam[i*4+1],
				attributes:   p.oam[i*4+2],
				x:            p.oam[i*4+3],
				isSpriteZero: i == 0,
			}
			p.spriteCnt++
		} else {
			p.status.SetSpriteOverflow(true)
			break
		}
	}
}

// fetchSpritePatterns regenerates the pattern-table addresses the real
// PPU drives for each evaluated sprite during cycles 257-320, issuing all
// of them together at cycle 320 rather than spread over that range. The reads
// still happen, and still reach the mapper's address-bus hooks through
// ppuRead, but the fetched bytes are discarded: pixel compositing is out
// of scope.
func (p *PPU) fetchSpritePatterns() {
	if p.cycle != 320 {
		return
	}
	for i := 0; i < p.spriteCnt; i++ {
		s := p.secondary[i]
		row := uint16(p.scanline) - uint16(s.y)
		flipV := s.attributes&0x80 != 0
		var base, tile uint16
		height := uint16(8)
		if p.control.SpriteSize() != 0 {
			height = 16
			base = uint16(s.tile&0x01) * 0x1000
			tile = uint16(s.tile &^ 0x01)
			if flipV {
				row = height - 1 - row
			}
			if row >= 8 {
				tile++
				row -= 8
			}
		} else {
			base = p.control.SpritePatternTable()
			tile = uint16(s.tile)
			if flipV {
				row = height - 1 - row
			}
		}
		addr := base + tile*16 + row
		p.ppuRead(addr)
		p.ppuRead(addr + 8)
	}
}
