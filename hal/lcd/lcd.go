// Package lcd drives the NHD-C0220BiZ 2x20 character display (ST7036
// controller) over an I2C bus.
package lcd

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
)

const (
	// Address is the 7-bit bus address of the display.
	Address uint16 = 0x3C

	controlCommand byte = 0x00
	controlData    byte = 0x40

	CmdClear      byte = 0x01
	CmdHome       byte = 0x02
	CmdDisplay    byte = 0x08
	DisplayOn     byte = 0x04
	DisplayCursor byte = 0x02
	DisplayBlink  byte = 0x01
	CmdAddress    byte = 0x80

	// Line1 and Line2 are the DDRAM start addresses of the two rows.
	Line1 uint8 = 0x00
	Line2 uint8 = 0x40

	// Columns is the number of characters per row.
	Columns = 20
)

// init sequence: function set (8 bit, 2 line, IS=1), bias, contrast, power,
// follower, function set (IS=0).
var initCommands = []byte{0x38, 0x39, 0x14, 0x78, 0x5E, 0x6D, 0x38}

var ErrTooLong = errors.New("message longer than display line")

// Device is an ST7036 display on an I2C bus.
type Device struct {
	bus  drivers.I2C
	addr uint16
}

// New returns a display on bus at the default address.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, addr: Address}
}

// Initialize sends the power-up sequence and turns the display on.
func (d *Device) Initialize() error {
	buf := append([]byte{controlCommand}, initCommands...)
	if err := d.bus.Tx(d.addr, buf, nil); err != nil {
		return fmt.Errorf("lcd init: %w", err)
	}
	return d.Command(CmdDisplay | DisplayOn)
}

// Command sends a single instruction byte.
func (d *Device) Command(cmd byte) error {
	if err := d.bus.Tx(d.addr, []byte{controlCommand, cmd}, nil); err != nil {
		return fmt.Errorf("lcd command 0x%02x: %w", cmd, err)
	}
	return nil
}

// Message writes text starting at DDRAM address addr.
func (d *Device) Message(addr uint8, text string) error {
	if len(text) > Columns {
		return ErrTooLong
	}
	if err := d.Command(CmdAddress | addr); err != nil {
		return err
	}
	buf := append([]byte{controlData}, text...)
	if err := d.bus.Tx(d.addr, buf, nil); err != nil {
		return fmt.Errorf("lcd message: %w", err)
	}
	return nil
}

// ClearChars overwrites n characters from addr with spaces.
func (d *Device) ClearChars(addr uint8, n int) error {
	if n > Columns {
		n = Columns
	}
	if n <= 0 {
		return nil
	}
	blank := make([]byte, n)
	for i := range blank {
		blank[i] = ' '
	}
	return d.Message(addr, string(blank))
}
