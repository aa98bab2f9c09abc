// Package console implements the debug console on a UART.
package console

import (
	"fmt"
	"strings"

	"tinygo.org/x/drivers"
)

// Console writes formatted text to a UART. Line feeds are expanded to the
// "\n\r" pair the board terminal expects.
type Console struct {
	uart drivers.UART
	errs int
}

func New(uart drivers.UART) *Console {
	return &Console{uart: uart}
}

// Printf formats and writes text. Write errors are counted, not returned, so
// tasks can print without an error branch.
func (c *Console) Printf(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\n\r")
	if _, err := c.uart.Write([]byte(s)); err != nil {
		c.errs++
	}
}

// ReadByte returns the next received byte, if any.
func (c *Console) ReadByte() (byte, bool) {
	if c.uart.Buffered() == 0 {
		return 0, false
	}
	var b [1]byte
	n, err := c.uart.Read(b[:])
	if err != nil || n == 0 {
		return 0, false
	}
	return b[0], true
}

// WriteErrors returns the number of failed writes.
func (c *Console) WriteErrors() int {
	return c.errs
}
