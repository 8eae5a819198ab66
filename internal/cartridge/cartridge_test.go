package cartridge

import (
	"bytes"
	"testing"
)

func buildINES(mapperID uint8, prgBanks, chrBanks uint8, flags6 uint8) []byte {
	header := make([]byte, 16)
	copy(header[0:4], []byte("NES\x1A"))
	header[4] = prgBanks
	header[5] = chrBanks
	header[6] = (mapperID << 4) | (flags6 & 0x0F)
	header[7] = mapperID & 0xF0

	buf := bytes.NewBuffer(header)
	buf.Write(make([]byte, int(prgBanks)*16384))
	buf.Write(make([]byte, int(chrBanks)*8192))
	return buf.Bytes()
}

func TestLoadFromReaderRejectsBadMagic(t *testing.T) {
	data := buildINES(0, 1, 1, 0)
	data[0] = 'X'
	_, err := LoadFromReader(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
	if _, ok := err.(*BadRomHeaderError); !ok {
		t.Fatalf("expected *BadRomHeaderError, got %T", err)
	}
}

func TestLoadFromReaderRejectsZeroPRG(t *testing.T) {
	data := buildINES(0, 0, 1, 0)
	_, err := LoadFromReader(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error for zero PRG size")
	}
}

func TestLoadFromReaderUnsupportedMapper(t *testing.T) {
	data := buildINES(255, 1, 1, 0)
	_, err := LoadFromReader(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error for unsupported mapper")
	}
	if _, ok := err.(*UnsupportedMapperError); !ok {
		t.Fatalf("expected *UnsupportedMapperError, got %T", err)
	}
}

func TestLoadFromReaderNROM(t *testing.T) {
	data := buildINES(0, 2, 1, 0x01) // vertical mirroring
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.MapperID() != 0 {
		t.Fatalf("expected mapper id 0, got %d", cart.MapperID())
	}
	if cart.GetMirrorMode() != MirrorVertical {
		t.Fatalf("expected vertical mirroring, got %v", cart.GetMirrorMode())
	}
}

func TestLoadFromReaderCHRRAMWhenZero(t *testing.T) {
	data := buildINES(0, 1, 0, 0)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.hasCHRRAM {
		t.Fatal("expected CHR RAM when header CHR size is 0")
	}
	cart.WriteCHR(0x0000, 0x42)
	if got := cart.ReadCHR(0x0000); got != 0x42 {
		t.Fatalf("expected CHR RAM round-trip, got 0x%02X", got)
	}
}

func TestLoadFromReaderFourScreenMirroring(t *testing.T) {
	data := buildINES(0, 1, 1, 0x08)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.GetMirrorMode() != MirrorFourScreen {
		t.Fatalf("expected four-screen mirroring, got %v", cart.GetMirrorMode())
	}
}

func TestLoadFromReaderTrainerSkipped(t *testing.T) {
	header := make([]byte, 16)
	copy(header[0:4], []byte("NES\x1A"))
	header[4] = 1
	header[5] = 1
	header[6] = 0x04 // trainer present

	buf := bytes.NewBuffer(header)
	trainer := make([]byte, 512)
	trainer[0] = 0xAA
	buf.Write(trainer)
	prg := make([]byte, 16384)
	prg[0] = 0x77
	buf.Write(prg)
	buf.Write(make([]byte, 8192))

	cart, err := LoadFromReader(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cart.ReadPRG(0x8000); got != 0x77 {
		t.Fatalf("expected trainer bytes skipped, PRG[0]=0x%02X, got 0x%02X at $8000", prg[0], got)
	}
}

func TestMockCartridgeRoundTrip(t *testing.T) {
	cart := NewMockCartridge()
	cart.LoadPRG([]byte{1, 2, 3, 4})
	if got := cart.ReadPRG(0x8000); got != 1 {
		t.Fatalf("expected PRG[0]=1, got %d", got)
	}

	cart.WritePRG(0x6000, 0x55)
	if got := cart.ReadPRG(0x6000); got != 0x55 {
		t.Fatalf("expected PRG-RAM round trip, got 0x%02X", got)
	}

	cart.SetMirroring(MirrorVertical)
	if cart.Mirroring() != uint8(MirrorVertical) {
		t.Fatalf("expected mirroring %d, got %d", MirrorVertical, cart.Mirroring())
	}

	cart.ClearLogs()
	if len(cart.prgReads) != 0 {
		t.Fatal("expected logs cleared")
	}
}
