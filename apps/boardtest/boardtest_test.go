package boardtest_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/apps/boardtest"
	"github.com/comalice/superloop/hal"
	"github.com/comalice/superloop/hal/lcd"
	"github.com/comalice/superloop/hal/sim"
	"github.com/comalice/superloop/input"
	"github.com/comalice/superloop/realtime"
)

var _ = Describe("BoardTest", func() {
	var (
		board *sim.Board
		loop  *realtime.Loop
		bt    *boardtest.Test
		task  *superloop.Task
		dev   boardtest.Devices
		cfg   boardtest.Config
	)

	press := func(pin int) {
		board.Inputs.Set(pin, true)
		Expect(loop.Run(input.DefaultDebounce + 5)).To(Succeed())
		board.Inputs.Set(pin, false)
		Expect(loop.Run(input.DefaultDebounce + 5)).To(Succeed())
	}

	effectsOn := func(device string) []sim.Effect {
		var out []sim.Effect
		for _, e := range board.Effects() {
			if e.Device == device {
				out = append(out, e)
			}
		}
		return out
	}

	BeforeEach(func() {
		board = sim.NewBoard()
		dev = boardtest.Devices{
			LEDs:    board.LEDs,
			Console: board.Console,
			Buzzer1: board.Buzzer1,
			Buzzer2: board.Buzzer2,
			Radio:   board.Radio,
			Display: lcd.New(board.Bus),
		}
		for i := range dev.Buttons {
			dev.Buttons[i] = input.New(i)
		}
		cfg = boardtest.Config{}
	})

	JustBeforeEach(func() {
		var err error
		bt, task, err = boardtest.New(dev, cfg)
		Expect(err).ToNot(HaveOccurred())
		scanner, err := input.NewScanner(board.Inputs, dev.Buttons[:]...)
		Expect(err).ToNot(HaveOccurred())

		loop = realtime.NewLoop(realtime.Config{})
		Expect(loop.Register(scanner)).To(Succeed())
		Expect(loop.Register(task)).To(Succeed())
		Expect(loop.Initialize()).To(Succeed())
	})

	It("should reject missing devices", func() {
		_, _, err := boardtest.New(boardtest.Devices{LEDs: board.LEDs}, cfg)
		Expect(err).To(MatchError(boardtest.ErrMissingDevice))
	})

	Describe("Initialize", func() {
		It("should light every LED and announce itself", func() {
			Expect(board.LEDs.Lit(hal.ASCIILEDs)).To(HaveLen(len(hal.ASCIILEDs)))
			Expect(board.LEDs.IsOn(hal.LCDRed)).To(BeTrue())
			Expect(board.LEDs.IsOn(hal.LCDGreen)).To(BeTrue())
			Expect(board.LEDs.IsOn(hal.LCDBlue)).To(BeTrue())
			Expect(board.Console.Lines()).To(Equal([]string{"Board test task started\n"}))
			Expect(task.StateName(task.Current())).To(Equal("setup-radio"))
		})
	})

	Describe("SetupRadio", func() {
		It("should go idle once the radio is configured", func() {
			board.Radio.SetStatus(hal.RadioConfigured)
			Expect(loop.Step()).To(Succeed())
			Expect(task.Current()).To(Equal(superloop.StateIdle))
			Expect(board.Console.Lines()).To(ContainElement("Board test radio ready\n"))
		})

		It("should give up after the timeout", func() {
			Expect(loop.Run(2999)).To(Succeed())
			Expect(task.Current()).To(Equal(boardtest.StateSetupRadio))

			Expect(loop.Step()).To(Succeed())
			Expect(task.Current()).To(Equal(superloop.StateIdle))
			Expect(board.Console.Lines()).To(ContainElement("Board test cannot assign radio channel\n"))
		})
	})

	Describe("Idle", func() {
		JustBeforeEach(func() {
			board.Radio.SetStatus(hal.RadioConfigured)
			Expect(loop.Step()).To(Succeed())
			Expect(task.Current()).To(Equal(superloop.StateIdle))
			board.Reset()
		})

		It("should toggle the LEDs with button 0", func() {
			press(0)
			Expect(board.LEDs.Lit(hal.ASCIILEDs)).To(BeEmpty())

			press(0)
			Expect(board.LEDs.Lit(hal.ASCIILEDs)).To(HaveLen(len(hal.ASCIILEDs)))
		})

		It("should open and close the radio with button 1", func() {
			press(1)
			Expect(effectsOn("radio")).To(ConsistOf(sim.Effect{Device: "radio", Op: "open"}))

			Expect(board.Radio.Status()).To(Equal(hal.RadioOpening))
			Expect(board.Radio.Status()).To(Equal(hal.RadioOpen))

			press(1)
			Expect(effectsOn("radio")).To(HaveLen(2))
			Expect(board.Radio.Status()).To(Equal(hal.RadioClosing))
		})

		It("should cycle the backlight with button 2", func() {
			rgb := func() []bool {
				return []bool{
					board.LEDs.IsOn(hal.LCDRed),
					board.LEDs.IsOn(hal.LCDGreen),
					board.LEDs.IsOn(hal.LCDBlue),
				}
			}

			press(2)
			Expect(rgb()).To(Equal([]bool{false, false, false}))
			press(2)
			Expect(rgb()).To(Equal([]bool{true, false, false}))
			press(2)
			Expect(rgb()).To(Equal([]bool{false, true, false}))
			press(2)
			Expect(rgb()).To(Equal([]bool{false, false, true}))
			press(2)
			Expect(rgb()).To(Equal([]bool{true, true, true}))
			Expect(bt.Backlight()).To(BeZero())
		})

		It("should cycle the buzzers with button 3", func() {
			press(3)
			on, hz := board.Buzzer2.State()
			Expect(on).To(BeTrue())
			Expect(hz).To(Equal(uint32(1000)))

			press(3)
			on, hz = board.Buzzer1.State()
			Expect(on).To(BeTrue())
			Expect(hz).To(Equal(uint32(500)))
			on, _ = board.Buzzer2.State()
			Expect(on).To(BeFalse())

			press(3)
			on, _ = board.Buzzer1.State()
			Expect(on).To(BeFalse())
			on, _ = board.Buzzer2.State()
			Expect(on).To(BeFalse())
		})

		It("should scroll the banner every 200 ticks", func() {
			Expect(loop.Run(198)).To(Succeed())
			Expect(effectsOn("lcd")).To(BeEmpty())

			Expect(loop.Step()).To(Succeed())
			Expect(board.Bus.Line(0)).To(Equal("ENGENUICS RAZOR     "))
			Expect(board.Bus.Line(1)).To(Equal("ASCII DEV BOARD     "))

			Expect(loop.Run(200)).To(Succeed())
			Expect(board.Bus.Line(0)).To(Equal("NGENUICS RAZOR     E"))
			Expect(board.Bus.Line(1)).To(Equal("SCII DEV BOARD     A"))
		})
	})

	Context("when the precondition fails", func() {
		BeforeEach(func() {
			cfg.Precondition = func() error { return errors.New("radio not fitted") }
		})

		It("should only print the error banner once", func() {
			Expect(task.Current()).To(Equal(superloop.StateError))

			board.Radio.SetStatus(hal.RadioConfigured)
			for pin := 0; pin < 4; pin++ {
				press(pin)
			}
			Expect(loop.Run(5000)).To(Succeed())

			Expect(effectsOn("led")).To(BeEmpty())
			Expect(effectsOn("lcd")).To(BeEmpty())
			Expect(effectsOn("radio")).To(BeEmpty())
			Expect(effectsOn("buzzer1")).To(BeEmpty())
			Expect(effectsOn("buzzer2")).To(BeEmpty())
			Expect(board.Console.Lines()).To(Equal([]string{"\n***BOARDTEST ERROR STATE***\n\n"}))
		})
	})
})
