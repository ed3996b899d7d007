// Command mapper-bench drives a loaded cartridge's mapper through a
// synthetic run of CPU cycles over the master-clock schedule, reporting
// how many times the mapper's IRQ line asserted and how many PPU frames
// completed. A stub stands in for the CPU module: each Get half-cycle it
// issues one cartridge-space read so mapper IRQ counters that tick on
// CPU reads still see bus traffic.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/wrenfield/nesmapper/pkg/clock"
	"github.com/wrenfield/nesmapper/pkg/nes"
)

// stubCPU issues one cartridge-space read per Get half-cycle and does
// nothing on Put; it exists only to give mapper-bench bus traffic to
// drive IRQ counters with, not to execute instructions.
type stubCPU struct {
	bus interface {
		Read(addr uint16) byte
	}
	pc uint16
}

func (c *stubCPU) RunHalfCycle(parity clock.CycleParity) {
	if parity != clock.Get {
		return
	}
	c.bus.Read(c.pc)
	c.pc++
	if c.pc == 0 {
		c.pc = 0x8000
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: mapper-bench <rom-file> [cycles]")
		os.Exit(1)
	}
	cycles := int64(200000)
	if len(os.Args) > 2 {
		n, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			fmt.Printf("Invalid cycle count %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		cycles = n
	}

	cpu := &stubCPU{pc: 0x8000}
	system, err := nes.New(os.Args[1], cpu)
	if err != nil {
		fmt.Printf("Error loading ROM: %v\n", err)
		os.Exit(1)
	}
	cpu.bus = system.Bus()

	var irqAssertions, frames int64
	wasAsserted := false
	for i := int64(0); i < cycles; i++ {
		system.Step()
		asserted := system.IrqAsserted()
		if asserted && !wasAsserted {
			irqAssertions++
		}
		wasAsserted = asserted
		if system.PPU().FrameReady() {
			frames++
		}
	}

	fmt.Printf("ran %d CPU cycles\n", cycles)
	fmt.Printf("IRQ rising edges observed: %d\n", irqAssertions)
	fmt.Printf("PPU frames completed: %d\n", frames)

	system.Shutdown()
}
