package sim

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

var ErrNoDevice = errors.New("no device at address")

// I2CBus implements drivers.I2C. Writes to the display address are decoded
// into a 2x20 character buffer; other addresses NAK.
type I2CBus struct {
	rec     *Recorder
	mu      sync.Mutex
	addr    uint16
	ddram   [2][20]byte
	cursor  uint8
	display bool
}

// NewI2CBus creates a bus with a character display at 0x3C.
func NewI2CBus(r *Recorder) *I2CBus {
	b := &I2CBus{rec: r, addr: 0x3C}
	for i := range b.ddram {
		for j := range b.ddram[i] {
			b.ddram[i][j] = ' '
		}
	}
	return b
}

func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	if addr != b.addr {
		return fmt.Errorf("0x%02x: %w", addr, ErrNoDevice)
	}
	if len(w) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch w[0] {
	case 0x00:
		for _, cmd := range w[1:] {
			b.command(cmd)
		}
		b.rec.record("lcd", "command", fmt.Sprintf("% x", w[1:]))
	case 0x40:
		for _, c := range w[1:] {
			b.write(c)
		}
		b.rec.record("lcd", "data", string(w[1:]))
	}
	return nil
}

func (b *I2CBus) command(cmd byte) {
	switch {
	case cmd&0x80 != 0:
		b.cursor = cmd & 0x7F
	case cmd == 0x01:
		for i := range b.ddram {
			for j := range b.ddram[i] {
				b.ddram[i][j] = ' '
			}
		}
		b.cursor = 0
	case cmd == 0x02:
		b.cursor = 0
	case cmd&0xF8 == 0x08:
		b.display = cmd&0x04 != 0
	}
}

func (b *I2CBus) write(c byte) {
	row := 0
	col := int(b.cursor)
	if b.cursor >= 0x40 {
		row = 1
		col = int(b.cursor - 0x40)
	}
	if col < len(b.ddram[row]) {
		b.ddram[row][col] = c
	}
	b.cursor++
}

// Line returns the text of display row 0 or 1.
func (b *I2CBus) Line(row int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.ddram[row][:])
}

// DisplayOn reports whether the display-on command was received.
func (b *I2CBus) DisplayOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.display
}

// UART implements drivers.UART with in-memory buffers.
type UART struct {
	mu sync.Mutex
	tx bytes.Buffer
	rx bytes.Buffer
}

func (u *UART) Write(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tx.Write(p)
}

func (u *UART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rx.Read(p)
}

func (u *UART) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rx.Len()
}

// Receive queues bytes as if they arrived on the wire.
func (u *UART) Receive(p []byte) {
	u.mu.Lock()
	u.rx.Write(p)
	u.mu.Unlock()
}

// Transmitted returns everything written so far.
func (u *UART) Transmitted() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tx.String()
}
