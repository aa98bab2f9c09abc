package superloop

// Divider derives a slower periodic event from per-tick calls. Step returns
// true exactly once every Period calls; a zero Period behaves like 1.
//
//	d := Divider{Period: 250}
//	if d.Step() {
//		leds.Toggle(hal.Red3)
//	}
type Divider struct {
	Period uint32
	count  uint32
}

// Step counts one call and reports whether the period just elapsed.
func (d *Divider) Step() bool {
	p := d.Period
	if p == 0 {
		p = 1
	}
	d.count++
	if d.count >= p {
		d.count = 0
		return true
	}
	return false
}

// Phase returns the number of calls counted in the current period.
func (d *Divider) Phase() uint32 {
	return d.count
}

func (d *Divider) Reset() {
	d.count = 0
}
