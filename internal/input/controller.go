// Package input implements controller handling for the NES.
package input

// Button represents NES controller buttons
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Convenience constants for shorter names used by frontends.
const (
	A      = ButtonA
	B      = ButtonB
	Select = ButtonSelect
	Start  = ButtonStart
	Up     = ButtonUp
	Down   = ButtonDown
	Left   = ButtonLeft
	Right  = ButtonRight
)

// Controller represents a NES controller and its $4016/$4017 shift register.
type Controller struct {
	buttons uint8

	shiftRegister uint8
	strobe        bool

	buttonSnapshot uint8
	bitPosition    uint8 // which bit of the shift register Read will return next
}

// New creates a new Controller instance.
func New() *Controller {
	return &Controller{}
}

// SetButton sets the state of a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets all 8 button states at once, in NES order:
// A, B, Select, Start, Up, Down, Left, Right.
func (c *Controller) SetButtons(buttons [8]bool) {
	var state uint8
	if buttons[0] {
		state |= uint8(ButtonA)
	}
	if buttons[1] {
		state |= uint8(ButtonB)
	}
	if buttons[2] {
		state |= uint8(ButtonSelect)
	}
	if buttons[3] {
		state |= uint8(ButtonStart)
	}
	if buttons[4] {
		state |= uint8(ButtonUp)
	}
	if buttons[5] {
		state |= uint8(ButtonDown)
	}
	if buttons[6] {
		state |= uint8(ButtonLeft)
	}
	if buttons[7] {
		state |= uint8(ButtonRight)
	}
	c.buttons = state
}

// IsPressed returns true if the button is currently pressed.
func (c *Controller) IsPressed(button Button) bool {
	return (c.buttons & uint8(button)) != 0
}

// Write handles writes to the controller strobe register ($4016).
// Each write with bit 0 set latches the live button state into the shift
// register; once bit 0 is cleared, reads shift that latched state out.
func (c *Controller) Write(value uint8) {
	c.strobe = (value & 1) != 0

	if c.strobe {
		c.buttonSnapshot = c.buttons
		c.shiftRegister = c.buttons
		c.bitPosition = 0
	}
}

// Read handles reads from the controller data register ($4016/$4017).
// Only bit 0 carries button data; bit positions beyond the 8 buttons read
// back 1 on real hardware, matching open-bus/shift-register behavior.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.bitPosition = 0
		return c.buttonSnapshot & 1
	}

	if c.bitPosition >= 8 {
		c.bitPosition++
		return 1
	}

	result := c.shiftRegister & 1
	c.shiftRegister >>= 1
	c.bitPosition++
	return result
}

// Reset resets the controller to its power-up state.
func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
	c.buttonSnapshot = 0
	c.bitPosition = 0
}

// GetBitPosition returns the current shift-register read position, for tests.
func (c *Controller) GetBitPosition() uint8 {
	return c.bitPosition
}

// InputState holds both NES controller ports.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates an input state with two controllers.
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets both controllers.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 sets all button states for controller 1.
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 sets all button states for controller 2.
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}

// Read reads from a controller port. $4017 reads always have bit 6 set,
// matching NES open-bus behavior on that address.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write writes to the controller strobe register; both controllers latch
// from the same $4016 write.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
