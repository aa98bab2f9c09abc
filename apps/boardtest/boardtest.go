// Package boardtest is the ASCII board self test. It exercises every LED, the
// radio channel, the LCD backlight, both buzzers and the character display
// from the four buttons.
package boardtest

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/hal"
	"github.com/comalice/superloop/hal/lcd"
	"github.com/comalice/superloop/input"
)

const (
	DefaultSetupTimeout = 3000
	DefaultBannerPeriod = 200

	bannerTop    = "ENGENUICS RAZOR     "
	bannerBottom = "ASCII DEV BOARD     "
)

var ErrMissingDevice = errors.New("boardtest: missing device")

// Devices are the board peripherals the test drives.
type Devices struct {
	LEDs    hal.LEDs
	Console hal.Console
	Buzzer1 hal.Buzzer
	Buzzer2 hal.Buzzer
	Radio   hal.Radio
	Display hal.Display
	Buttons [4]*input.Button // sampled by an input scanner registered earlier
}

type Config struct {
	SetupTimeout uint64 // ticks to wait for the radio (default: 3000)
	BannerPeriod uint64 // ticks between banner frames (default: 200)
	Logger       *zap.SugaredLogger

	Precondition func() error
}

// State ids beyond idle and error.
const (
	StateSetupRadio superloop.StateID = superloop.StateUser + iota
)

// backlight steps for button 2 as red, green, blue; step 0 is the state left
// by Initialize
var backlight = [5][3]bool{
	{true, true, true},
	{false, false, false},
	{true, false, false},
	{false, true, false},
	{false, false, true},
}

// Test holds the self test's state across ticks.
type Test struct {
	dev    Devices
	cfg    Config
	logger *zap.SugaredLogger

	setupStart   uint64
	ledsOff      bool
	backlightIdx int
	buzzerIdx    int
	bannerTimer  uint64
	bannerOffset int
	errorShown   bool
}

// New returns the self test and its task.
func New(dev Devices, cfg Config) (*Test, *superloop.Task, error) {
	if dev.LEDs == nil || dev.Console == nil || dev.Buzzer1 == nil || dev.Buzzer2 == nil ||
		dev.Radio == nil || dev.Display == nil {
		return nil, nil, ErrMissingDevice
	}
	for _, b := range dev.Buttons {
		if b == nil {
			return nil, nil, ErrMissingDevice
		}
	}
	if cfg.SetupTimeout == 0 {
		cfg.SetupTimeout = DefaultSetupTimeout
	}
	if cfg.BannerPeriod == 0 {
		cfg.BannerPeriod = DefaultBannerPeriod
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	bt := &Test{dev: dev, cfg: cfg, logger: logger}
	t, err := superloop.NewTask("boardtest",
		&superloop.State{ID: superloop.StateIdle, Name: "idle", Run: bt.idle},
		&superloop.State{ID: superloop.StateError, Name: "error", Run: bt.failed},
		&superloop.State{ID: StateSetupRadio, Name: "setup-radio", Run: bt.setupRadio, Initial: true},
	)
	if err != nil {
		return nil, nil, err
	}
	t.OnInitialize(bt.initialize)
	return bt, t, nil
}

func (bt *Test) initialize(ctx *superloop.Context) error {
	if bt.cfg.Precondition != nil {
		if err := bt.cfg.Precondition(); err != nil {
			return err
		}
	}

	for _, led := range hal.ASCIILEDs {
		bt.dev.LEDs.On(led)
	}
	bt.dev.LEDs.On(hal.LCDBlue)
	bt.dev.LEDs.On(hal.LCDGreen)
	bt.dev.LEDs.On(hal.LCDRed)

	bt.setupStart = ctx.Tick()
	bt.bannerTimer = ctx.Tick()
	bt.dev.Console.Printf("Board test task started\n")
	return nil
}

func (bt *Test) setupRadio(ctx *superloop.Context) superloop.StateID {
	if bt.dev.Radio.Status() == hal.RadioConfigured {
		bt.dev.Console.Printf("Board test radio ready\n")
		return superloop.StateIdle
	}
	if ctx.IsTimeUp(bt.setupStart, bt.cfg.SetupTimeout) {
		bt.dev.Console.Printf("Board test cannot assign radio channel\n")
		return superloop.StateIdle
	}
	return StateSetupRadio
}

func (bt *Test) idle(ctx *superloop.Context) superloop.StateID {
	b := bt.dev.Buttons

	if b[0].ConsumePress() {
		bt.ledsOff = !bt.ledsOff
		for _, led := range hal.ASCIILEDs {
			if bt.ledsOff {
				bt.dev.LEDs.Off(led)
			} else {
				bt.dev.LEDs.On(led)
			}
		}
	}

	if b[1].ConsumePress() {
		switch bt.dev.Radio.Status() {
		case hal.RadioConfigured, hal.RadioClosed:
			bt.dev.Radio.Open()
		case hal.RadioOpen:
			bt.dev.Radio.Close()
		}
	}

	if b[2].ConsumePress() {
		bt.backlightIdx = (bt.backlightIdx + 1) % len(backlight)
		step := backlight[bt.backlightIdx]
		bt.setLED(hal.LCDRed, step[0])
		bt.setLED(hal.LCDGreen, step[1])
		bt.setLED(hal.LCDBlue, step[2])
	}

	if b[3].ConsumePress() {
		bt.buzzerIdx = (bt.buzzerIdx + 1) % 3
		switch bt.buzzerIdx {
		case 1:
			bt.dev.Buzzer2.SetFrequency(1000)
			bt.dev.Buzzer1.Off()
			bt.dev.Buzzer2.On()
		case 2:
			bt.dev.Buzzer1.SetFrequency(500)
			bt.dev.Buzzer1.On()
			bt.dev.Buzzer2.Off()
		default:
			bt.dev.Buzzer1.Off()
			bt.dev.Buzzer2.Off()
		}
	}

	if ctx.IsTimeUp(bt.bannerTimer, bt.cfg.BannerPeriod) {
		bt.bannerTimer = ctx.Tick()
		bt.scrollBanner()
	}

	return superloop.StateIdle
}

func (bt *Test) failed(ctx *superloop.Context) superloop.StateID {
	if !bt.errorShown {
		bt.errorShown = true
		bt.dev.Console.Printf("\n***BOARDTEST ERROR STATE***\n\n")
	}
	return superloop.StateError
}

// scrollBanner writes the next frame, moving both lines one column left.
func (bt *Test) scrollBanner() {
	top := rotate(bannerTop, bt.bannerOffset)
	bottom := rotate(bannerBottom, bt.bannerOffset)
	if err := bt.dev.Display.Message(lcd.Line1, top); err != nil {
		bt.logger.Warnw("banner write failed", "line", 1, "error", err)
	}
	if err := bt.dev.Display.Message(lcd.Line2, bottom); err != nil {
		bt.logger.Warnw("banner write failed", "line", 2, "error", err)
	}

	bt.bannerOffset--
	if bt.bannerOffset < 0 {
		bt.bannerOffset = len(bannerTop) - 1
	}
}

// rotate places s[i] at column (i+offset) mod len(s)
func rotate(s string, offset int) string {
	n := len(s)
	offset %= n
	var sb strings.Builder
	sb.Grow(n)
	sb.WriteString(s[n-offset:])
	sb.WriteString(s[:n-offset])
	return sb.String()
}

func (bt *Test) setLED(led hal.LED, on bool) {
	if on {
		bt.dev.LEDs.On(led)
		return
	}
	bt.dev.LEDs.Off(led)
}

// Backlight returns the current backlight step, 0 being all colours on.
func (bt *Test) Backlight() int {
	return bt.backlightIdx
}
