package app

import (
	"fmt"
	"os"
)

// DumpFrameBufferPPM writes a 256x240 NES frame buffer to filename in the
// plain-text PPM (P3) format, for visual smoke-testing without a GUI.
func DumpFrameBufferPPM(frameBuffer []uint32, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frameBuffer[y*256+x]
			r := (pixel >> 16) & 0xFF
			g := (pixel >> 8) & 0xFF
			b := pixel & 0xFF
			fmt.Fprintf(file, "%d %d %d ", r, g, b)
		}
		fmt.Fprintln(file)
	}
	return nil
}
