package cartridge

import (
	"os"
	"path/filepath"
	"testing"
)

// buildInes assembles a minimal iNES image: mapper 0 (NROM), the given
// PRG/CHR bank counts, and flags6/flags7 bits a caller wants set.
func buildInes(prgBanks, chrBanks byte, flags6, flags7 byte) []byte {
	data := make([]byte, inesHeaderSize)
	copy(data[0:4], inesMagic)
	data[4] = prgBanks
	data[5] = chrBanks
	data[6] = flags6
	data[7] = flags7

	prg := make([]byte, int(prgBanks)*prgROMBankSize)
	for i := range prg {
		prg[i] = byte(i)
	}
	data = append(data, prg...)

	chr := make([]byte, int(chrBanks)*chrROMBankSize)
	data = append(data, chr...)

	return data
}

func TestLoadFromBytesResolvesNromMapper(t *testing.T) {
	data := buildInes(1, 1, 0x00, 0x00)
	cart, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}
	if cart.MapperNumber != 0 {
		t.Fatalf("MapperNumber = %d, want 0", cart.MapperNumber)
	}
	if cart.PrgBanks != 1 || cart.ChrBanks != 1 {
		t.Fatalf("unexpected bank counts: prg=%d chr=%d", cart.PrgBanks, cart.ChrBanks)
	}
	// 16KiB PRG ROM mirrors into both halves of 0x8000-0xFFFF.
	if got := cart.Memory.Prg.Peek(0x8000).Value; got != 0x00 {
		t.Fatalf("peek 0x8000 = %#x, want 0x00", got)
	}
	if got := cart.Memory.Prg.Peek(0xC000).Value; got != 0x00 {
		t.Fatalf("mirrored peek 0xC000 = %#x, want 0x00", got)
	}
}

func TestLoadFromBytesRejectsBadMagic(t *testing.T) {
	data := buildInes(1, 1, 0, 0)
	data[0] = 'X'
	if _, err := LoadFromBytes(data); err == nil {
		t.Fatalf("expected an error for bad magic")
	}
}

func TestLoadFromBytesRejectsTruncatedPrg(t *testing.T) {
	data := buildInes(2, 0, 0, 0)
	data = data[:inesHeaderSize+prgROMBankSize] // declare 2 banks, supply 1
	if _, err := LoadFromBytes(data); err == nil {
		t.Fatalf("expected an error for truncated PRG data")
	}
}

func TestParseHeaderNes2SubmapperAndMapperHighBits(t *testing.T) {
	data := buildInes(1, 1, 0xF0, 0xF8)
	data[8] = 0x25 // submapper 2, mapper bits 8-11 = 0x5
	h := parseHeader(data)
	wantMapper := 0x5FF // mapperTop(0x500) | mapperHigh(0xF0) | mapperLow(0xF)
	if h.mapperNumber != wantMapper {
		t.Fatalf("mapperNumber = %d, want %d", h.mapperNumber, wantMapper)
	}
	if h.submapperNumber != 2 {
		t.Fatalf("submapperNumber = %d, want 2", h.submapperNumber)
	}
	if !h.isNes2 {
		t.Fatalf("expected isNes2 to be true")
	}
}

func TestMirroringFlagAppliedToChrMemory(t *testing.T) {
	vertical := buildInes(1, 1, 0x01, 0x00)
	cart, err := LoadFromBytes(vertical)
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}
	cart.Memory.Chr.Write(0x2000, 0xAA)
	// Vertical mirroring: 0x2000 and 0x2800 share a CIRAM half; 0x2400
	// does not.
	if got := cart.Memory.Chr.Peek(0x2800).Value; got != 0xAA {
		t.Fatalf("vertical mirroring: 0x2800 = %#x, want 0xAA", got)
	}
	if got := cart.Memory.Chr.Peek(0x2400).Value; got == 0xAA {
		t.Fatalf("vertical mirroring: 0x2400 unexpectedly aliased to 0x2000")
	}
}

func TestFlushSaveRamIsNoOpWithoutBatteryFlag(t *testing.T) {
	data := buildInes(1, 1, 0x00, 0x00) // no battery flag
	dir := t.TempDir()
	romPath := filepath.Join(dir, "game.nes")
	if err := os.WriteFile(romPath, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cart, err := Load(romPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cart.FlushSaveRam()
	if _, err := os.Stat(filepath.Join(dir, "game.sav")); err == nil {
		t.Fatalf("expected no .sav file for a non-battery-backed cartridge")
	}
}

func TestSaveRamRoundTripsThroughSavFile(t *testing.T) {
	data := buildInes(1, 1, 0x02, 0x00) // battery flag set
	dir := t.TempDir()
	romPath := filepath.Join(dir, "game.nes")
	if err := os.WriteFile(romPath, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	savPath := filepath.Join(dir, "game.sav")
	if err := os.WriteFile(savPath, []byte{0xDE, 0xAD}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cart, err := Load(romPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	saveRam := cart.saveRamBuffer()
	if len(saveRam) < 2 || saveRam[0] != 0xDE || saveRam[1] != 0xAD {
		t.Fatalf("expected the .sav image to populate save RAM, got % x", saveRam[:2])
	}

	saveRam[0] = 0xBE
	cart.FlushSaveRam()
	flushed, err := os.ReadFile(savPath)
	if err != nil {
		t.Fatalf("ReadFile after flush: %v", err)
	}
	if flushed[0] != 0xBE {
		t.Fatalf("flushed .sav byte 0 = %#x, want 0xBE", flushed[0])
	}
}
