package input

import "testing"

func TestStrobeHighReloadsOnEachWrite(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(1) // strobe high: latches the live state into the snapshot
	if got := c.Read(); got != 1 {
		t.Fatalf("expected bit 0 of snapshotted A button state while strobed, got %d", got)
	}
	c.SetButton(ButtonA, false)
	c.Write(1) // re-latch to pick up the new live state
	if got := c.Read(); got != 0 {
		t.Fatalf("expected re-latched strobed read to reflect button released, got %d", got)
	}
}

func TestStrobeLowShiftsOutEightButtons(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, false, true, false, false, false, false, false}) // A, Select
	c.Write(1)
	c.Write(0) // latch and begin serial read

	expected := []uint8{1, 0, 1, 0, 0, 0, 0, 0}
	for i, want := range expected {
		if got := c.Read(); got != want {
			t.Fatalf("bit %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestReadsBeyondEightBitsReturnOne(t *testing.T) {
	c := New()
	c.Write(1)
	c.Write(0)
	for i := 0; i < 8; i++ {
		c.Read()
	}
	for i := 0; i < 3; i++ {
		if got := c.Read(); got != 1 {
			t.Fatalf("expected read past bit 8 to return 1, got %d", got)
		}
	}
}

func TestSetButtonsOrderMatchesNESLayout(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{false, false, false, false, false, false, false, true}) // Right only
	if !c.IsPressed(ButtonRight) {
		t.Fatal("expected last slot to map to Right")
	}
	if c.IsPressed(ButtonA) {
		t.Fatal("expected only Right pressed")
	}
}

func TestInputStateController2OpenBusOnPort4017(t *testing.T) {
	is := NewInputState()
	is.Write(0x4016, 1)
	is.Write(0x4016, 0)
	got := is.Read(0x4017)
	if got&0x40 == 0 {
		t.Fatal("expected bit 6 always set on $4017 reads")
	}
}

func TestInputStateWriteLatchesBothControllers(t *testing.T) {
	is := NewInputState()
	is.Controller1.SetButton(ButtonA, true)
	is.Controller2.SetButton(ButtonB, true)
	is.Write(0x4016, 1)
	is.Write(0x4016, 0)

	if got := is.Read(0x4016) & 1; got != 1 {
		t.Fatal("expected controller 1 first bit to be A (pressed)")
	}
	is.Read(0x4017) // first bit is A (not pressed)
	if got := is.Read(0x4017) & 1; got != 1 {
		t.Fatal("expected controller 2 second bit to be B (pressed)")
	}
}

func TestResetClearsState(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(1)
	c.Reset()
	if c.IsPressed(ButtonA) {
		t.Fatal("expected buttons cleared after reset")
	}
	if c.GetBitPosition() != 0 {
		t.Fatal("expected bit position reset to 0")
	}
}
