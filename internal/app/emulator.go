// Package app provides emulator integration for the main application.
package app

import (
	"fmt"
	"time"

	"gones/internal/bus"
)

// Emulator drives the bus one NTSC frame at a time on each Update call.
type Emulator struct {
	bus    *bus.Bus
	config *Config

	cyclesPerFrame uint64

	frameBuffer  []uint32
	audioSamples []float32

	emulationTime time.Duration
	cycleCount    uint64
	frameCount    uint64

	isRunning     bool
	lastResetTime time.Time
}

// NewEmulator creates an emulator bound to bus, paced at NTSC timing.
func NewEmulator(bus *bus.Bus, config *Config) *Emulator {
	e := &Emulator{
		bus:            bus,
		config:         config,
		cyclesPerFrame: 29781, // NTSC: 89342 PPU dots / 3
		frameBuffer:    make([]uint32, 256*240),
		audioSamples:   make([]float32, 0, 1024),
		lastResetTime:  time.Now(),
	}
	e.Reset()
	return e
}

// Reset clears frame/audio buffers and timing counters.
func (e *Emulator) Reset() {
	e.emulationTime = 0
	e.cycleCount = 0
	e.frameCount = 0
	e.lastResetTime = time.Now()

	for i := range e.frameBuffer {
		e.frameBuffer[i] = 0
	}
	e.audioSamples = e.audioSamples[:0]
}

// Start starts the emulator.
func (e *Emulator) Start() { e.isRunning = true }

// Stop stops the emulator.
func (e *Emulator) Stop() { e.isRunning = false }

// Update runs exactly one frame of emulation.
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}
	return e.StepFrame()
}

// StepFrame executes one frame's worth of CPU cycles and refreshes the
// frame/audio buffers.
func (e *Emulator) StepFrame() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}

	start := time.Now()
	targetCycles := e.bus.GetCycleCount() + e.cyclesPerFrame
	for e.bus.GetCycleCount() < targetCycles {
		e.bus.Step()
		if err := e.bus.Fault(); err != nil {
			return err
		}
	}
	e.frameCount++

	nesFrameBuffer := e.bus.GetFrameBuffer()
	if len(nesFrameBuffer) == len(e.frameBuffer) {
		copy(e.frameBuffer, nesFrameBuffer)
	}

	if samples := e.bus.GetAudioSamples(); len(samples) > 0 {
		if cap(e.audioSamples) < len(samples) {
			e.audioSamples = make([]float32, len(samples))
		} else {
			e.audioSamples = e.audioSamples[:len(samples)]
		}
		copy(e.audioSamples, samples)
	}

	e.emulationTime = time.Since(start)
	e.cycleCount = e.bus.GetCycleCount()
	return nil
}

// StepInstruction executes a single CPU instruction.
func (e *Emulator) StepInstruction() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}
	e.bus.Step()
	e.cycleCount = e.bus.GetCycleCount()
	if err := e.bus.Fault(); err != nil {
		return err
	}
	return nil
}

// GetFrameBuffer returns the current frame buffer.
func (e *Emulator) GetFrameBuffer() []uint32 { return e.frameBuffer }

// GetAudioSamples returns the current audio samples.
func (e *Emulator) GetAudioSamples() []float32 { return e.audioSamples }

// GetFrameCount returns the number of frames rendered.
func (e *Emulator) GetFrameCount() uint64 { return e.frameCount }

// GetCycleCount returns the current CPU cycle count.
func (e *Emulator) GetCycleCount() uint64 { return e.cycleCount }

// GetEmulationTime returns the wall-clock time spent emulating the last frame.
func (e *Emulator) GetEmulationTime() time.Duration { return e.emulationTime }

// IsRunning reports whether the emulator is running.
func (e *Emulator) IsRunning() bool { return e.isRunning }

// GetUptime returns the time since the emulator was last reset.
func (e *Emulator) GetUptime() time.Duration { return time.Since(e.lastResetTime) }

// GetCPUState returns the current CPU register/flag snapshot.
func (e *Emulator) GetCPUState() bus.CPUState {
	if e.bus == nil {
		return bus.CPUState{}
	}
	return e.bus.GetCPUState()
}

// GetPPUState returns the current PPU timing snapshot.
func (e *Emulator) GetPPUState() bus.PPUState {
	if e.bus == nil {
		return bus.PPUState{}
	}
	return e.bus.GetPPUState()
}

// Cleanup releases emulator resources.
func (e *Emulator) Cleanup() error {
	e.Stop()
	e.frameBuffer = nil
	e.audioSamples = nil
	return nil
}
