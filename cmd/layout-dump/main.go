// Command layout-dump loads a cartridge and prints its resolved
// MemoryMap, one line per PRG 8 KiB slot and CHR 1 KiB slot, exercising
// the full layout -> window -> bank -> register -> status resolution
// pipeline end to end.
package main

import (
	"fmt"
	"os"

	"github.com/wrenfield/nesmapper/pkg/cartridge"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: layout-dump <rom-file>")
		os.Exit(1)
	}

	cart, err := cartridge.Load(os.Args[1])
	if err != nil {
		fmt.Printf("Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("mapper %d submapper %d\n\n", cart.MapperNumber, cart.SubmapperNumber)

	fmt.Println("PRG map (0x6000-0xFFFF, 8 KiB slots):")
	for addr := uint32(0x6000); addr <= 0xFFFF; addr += 0x2000 {
		id := cart.Memory.Prg.PageIdAt(uint16(addr))
		fmt.Printf("  0x%04X: %s\n", addr, describe(id))
	}

	fmt.Println("\nCHR map (0x0000-0x2FFF, 1 KiB slots):")
	for addr := uint32(0x0000); addr <= 0x2FFF; addr += 0x0400 {
		id := cart.Memory.Chr.PageIdAt(uint16(addr))
		fmt.Printf("  0x%04X: %s\n", addr, describe(id))
	}

	fmt.Printf("\nname-table mirroring: %v\n", cart.Memory.Chr.Mirroring())
}

func describe(id memory.PageId) string {
	switch id.Kind {
	case memory.PageEmpty:
		return "empty (open bus)"
	case memory.PageRom:
		return fmt.Sprintf("ROM page %d", id.Number)
	case memory.PageRam:
		return fmt.Sprintf("RAM page %d", id.Number)
	case memory.PageCiram:
		return fmt.Sprintf("CIRAM side %v", id.Side)
	case memory.PageSaveRam:
		return "save RAM"
	case memory.PageExtendedRam:
		return "extended RAM"
	case memory.PageFillModeTile:
		return "fill-mode tile"
	default:
		return "unknown"
	}
}
