// Package bus wires the CPU, PPU, APU, controller, and cartridge together
// into the system clock: it steps the CPU one instruction at a time, runs
// the PPU three dots per CPU cycle, and routes NMI/IRQ/DMA between them.
package bus

import (
	"io"

	"gones/internal/apu"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/memory"
	"gones/internal/ppu"
)

// Bus connects all NES components together.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cart memory.CartridgeInterface

	cpuCycles  uint64
	frameCount uint64

	dmaInProgress bool
	nmiPending    bool
}

// New creates a system bus with no cartridge loaded.
func New() *Bus {
	bus := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}

	bus.Memory = memory.New(bus.PPU, bus.APU, nil)
	bus.Memory.SetInputSystem(bus.Input)
	bus.CPU = cpu.New(bus.Memory)

	bus.PPU.SetNMICallback(bus.triggerNMI)
	bus.PPU.SetFrameCompleteCallback(bus.handleFrameComplete)
	bus.Memory.SetDMACallback(bus.TriggerOAMDMA)

	bus.Reset()
	return bus
}

// Reset resets all components to their power-up state.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()

	b.cpuCycles = 0
	b.frameCount = 0
	b.dmaInProgress = false
	b.nmiPending = false

	b.PPU.SetFrameCount(0)
}

// triggerNMI is invoked by the PPU when VBlank starts with NMI enabled.
func (b *Bus) triggerNMI() {
	b.nmiPending = true
}

// handleFrameComplete is invoked by the PPU at the end of each frame.
func (b *Bus) handleFrameComplete() {
	b.frameCount = b.PPU.GetFrameCount()
}

// Step executes one CPU instruction (or drains a pending DMA stall) and
// advances the PPU/APU/mapper in lockstep.
func (b *Bus) Step() uint64 {
	if b.nmiPending {
		b.CPU.AssertNMI()
		b.nmiPending = false
	}

	cpuCycles := b.CPU.Step()
	if b.CPU.LastStepWasStall() {
		b.dmaInProgress = false
	}

	for i := uint64(0); i < cpuCycles*3; i++ {
		b.PPU.Step()
		b.tickMapperIRQ()
	}

	for i := uint64(0); i < cpuCycles; i++ {
		b.APU.Step()
	}

	b.cpuCycles += cpuCycles
	return cpuCycles
}

// tickMapperIRQ advances the mapper's scanline counter at dot 260 of each
// rendering scanline and forwards its IRQ line to the CPU.
func (b *Bus) tickMapperIRQ() {
	if b.cart == nil {
		return
	}
	if b.PPU.IsRenderingEnabled() && b.PPU.GetCycle() == 260 && b.PPU.GetScanline() >= -1 && b.PPU.GetScanline() < 240 {
		b.cart.TickScanline()
	}
	b.CPU.AssertIRQ(b.cart.IrqPending())
}

// TriggerOAMDMA performs a 256-byte OAM DMA transfer from the given CPU
// page and stalls the CPU for 513 (or 514, on an odd cycle) cycles.
func (b *Bus) TriggerOAMDMA(sourcePage uint8) {
	dmaCycles := uint64(513)
	if b.cpuCycles%2 == 1 {
		dmaCycles = 514
	}

	b.dmaInProgress = true
	sourceAddress := uint16(sourcePage) << 8
	for i := 0; i < 256; i++ {
		data := b.Memory.Read(sourceAddress + uint16(i))
		b.PPU.WriteOAM(uint8(i), data)
	}

	b.CPU.SkipDMACycles(dmaCycles)
}

// LoadCartridge loads a cartridge into the system, rebuilding the CPU and
// picture buses around it.
func (b *Bus) LoadCartridge(cart memory.CartridgeInterface) {
	b.cart = cart

	b.Memory = memory.New(b.PPU, b.APU, cart)
	b.Memory.SetInputSystem(b.Input)
	b.CPU = cpu.New(b.Memory)

	ppuMemory := memory.NewPPUMemory(cart)
	b.PPU.SetMemory(ppuMemory)

	b.PPU.SetNMICallback(b.triggerNMI)
	b.Memory.SetDMACallback(b.TriggerOAMDMA)

	b.CPU.Reset()
}

// Run runs the emulator for the given number of frames, stopping early and
// returning the CPU's fault if it hits an illegal opcode.
func (b *Bus) Run(frames int) error {
	targetFrames := b.frameCount + uint64(frames)
	for b.frameCount < targetFrames {
		b.Step()
		if err := b.Fault(); err != nil {
			return err
		}
	}
	return nil
}

// RunCycles runs the emulator for the given number of CPU cycles, stopping
// early and returning the CPU's fault if it hits an illegal opcode.
func (b *Bus) RunCycles(cycles uint64) error {
	targetCycles := b.cpuCycles + cycles
	for b.cpuCycles < targetCycles {
		b.Step()
		if err := b.Fault(); err != nil {
			return err
		}
	}
	return nil
}

// Frame runs one NTSC frame's worth of CPU cycles (29781, i.e. 89342 PPU
// dots / 3), stopping early and returning the CPU's fault if it hits an
// illegal opcode.
func (b *Bus) Frame() error {
	targetCycles := b.cpuCycles + 29781
	for b.cpuCycles < targetCycles {
		b.Step()
		if err := b.Fault(); err != nil {
			return err
		}
	}
	return nil
}

// Fault returns the error that halted the CPU, or nil if it is still
// running normally. Once non-nil, further Step calls are no-ops.
func (b *Bus) Fault() error {
	if f := b.CPU.Fault(); f != nil {
		return f
	}
	return nil
}

// GetFrameBuffer returns the current PPU frame buffer.
func (b *Bus) GetFrameBuffer() []uint32 {
	frameBuffer := b.PPU.GetFrameBuffer()
	return frameBuffer[:]
}

// GetAudioSamples returns the APU's pending audio samples.
func (b *Bus) GetAudioSamples() []float32 {
	return b.APU.GetSamples()
}

// SetAudioSampleRate sets the APU's target sample rate.
func (b *Bus) SetAudioSampleRate(rate int) {
	b.APU.SetSampleRate(rate)
}

// GetCycleCount returns the total CPU cycle count since reset.
func (b *Bus) GetCycleCount() uint64 {
	return b.cpuCycles
}

// GetFrameCount returns the number of completed frames.
func (b *Bus) GetFrameCount() uint64 {
	return b.frameCount
}

// IsDMAInProgress reports whether an OAM DMA transfer has been triggered and
// its CPU stall has not yet been drained by a Step call.
func (b *Bus) IsDMAInProgress() bool {
	return b.dmaInProgress
}

// SetControllerButton sets a single button's state on a controller.
func (b *Bus) SetControllerButton(controller int, button input.Button, pressed bool) {
	switch controller {
	case 0, 1:
		b.Input.Controller1.SetButton(button, pressed)
	case 2:
		b.Input.Controller2.SetButton(button, pressed)
	}
}

// SetControllerButtons sets all 8 button states on a controller at once.
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0, 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	}
}

// GetInputState returns the controller state for direct access.
func (b *Bus) GetInputState() *input.InputState {
	return b.Input
}

// GetCPUState returns a snapshot of CPU registers and flags, for tests.
func (b *Bus) GetCPUState() CPUState {
	return CPUState{
		PC:     b.CPU.PC,
		A:      b.CPU.A,
		X:      b.CPU.X,
		Y:      b.CPU.Y,
		SP:     b.CPU.SP,
		Cycles: b.cpuCycles,
		Flags: CPUFlags{
			N: b.CPU.N,
			V: b.CPU.V,
			B: b.CPU.B,
			D: b.CPU.D,
			I: b.CPU.I,
			Z: b.CPU.Z,
			C: b.CPU.C,
		},
	}
}

// CPUState is a CPU register/flag snapshot used by tests.
type CPUState struct {
	PC      uint16
	A, X, Y uint8
	SP      uint8
	Cycles  uint64
	Flags   CPUFlags
}

// CPUFlags is a CPU status-flag snapshot used by tests.
type CPUFlags struct {
	N, V, B, D, I, Z, C bool
}

// GetPPUState returns a snapshot of PPU timing state, for tests.
func (b *Bus) GetPPUState() PPUState {
	return PPUState{
		Scanline:    b.PPU.GetScanline(),
		Cycle:       b.PPU.GetCycle(),
		FrameCount:  b.frameCount,
		VBlankFlag:  b.PPU.IsVBlank(),
		RenderingOn: b.PPU.IsRenderingEnabled(),
	}
}

// PPUState is a PPU timing snapshot used by tests.
type PPUState struct {
	Scanline    int
	Cycle       int
	FrameCount  uint64
	VBlankFlag  bool
	RenderingOn bool
}

// EnableCPUTrace routes retired-instruction trace lines to w in the
// nestest golden-log format.
func (b *Bus) EnableCPUTrace(w io.Writer) {
	b.CPU.SetTraceWriter(w)
}
