package holdled_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/apps/holdled"
	"github.com/comalice/superloop/hal"
	"github.com/comalice/superloop/hal/sim"
	"github.com/comalice/superloop/input"
	"github.com/comalice/superloop/realtime"
)

const pin = 0

var _ = Describe("HoldLED", func() {
	var (
		board  *sim.Board
		button *input.Button
		loop   *realtime.Loop
		task   *superloop.Task
		cfg    holdled.Config
	)

	BeforeEach(func() {
		board = sim.NewBoard()
		button = input.New(pin)
		cfg = holdled.Config{LED: hal.Blue0, Button: button}
	})

	JustBeforeEach(func() {
		scanner, err := input.NewScanner(board.Inputs, button)
		Expect(err).ToNot(HaveOccurred())
		task, err = holdled.New(board.LEDs, cfg)
		Expect(err).ToNot(HaveOccurred())

		loop = realtime.NewLoop(realtime.Config{})
		Expect(loop.Register(scanner)).To(Succeed())
		Expect(loop.Register(task)).To(Succeed())
		Expect(loop.Initialize()).To(Succeed())
		board.Reset()
	})

	It("should reject a missing button", func() {
		_, err := holdled.New(board.LEDs, holdled.Config{})
		Expect(err).To(MatchError(holdled.ErrNoButton))
	})

	Context("when the button is held", func() {
		JustBeforeEach(func() {
			board.Inputs.Set(pin, true)
		})

		It("should stay dark for the first 1999 ticks", func() {
			Expect(loop.Run(1999)).To(Succeed())
			Expect(button.IsPressed()).To(BeTrue())
			Expect(board.LEDs.IsOn(hal.Blue0)).To(BeFalse())
			Expect(board.Effects()).To(BeEmpty())
		})

		It("should light on the 2000th tick", func() {
			Expect(loop.Run(1999)).To(Succeed())
			Expect(loop.Step()).To(Succeed())
			Expect(board.LEDs.IsOn(hal.Blue0)).To(BeTrue())
			Expect(task.StateName(task.Current())).To(Equal("lit"))
			Expect(board.Effects()).To(HaveLen(1))
		})

		It("should go dark after release", func() {
			Expect(loop.Run(2000)).To(Succeed())
			board.Inputs.Set(pin, false)
			Expect(loop.Run(input.DefaultDebounce)).To(Succeed())

			Expect(board.LEDs.IsOn(hal.Blue0)).To(BeFalse())
			Expect(task.Current()).To(Equal(superloop.StateIdle))
		})
	})

	Context("when the button is released early", func() {
		It("should never light", func() {
			board.Inputs.Set(pin, true)
			Expect(loop.Run(1500)).To(Succeed())
			board.Inputs.Set(pin, false)
			Expect(loop.Run(100)).To(Succeed())
			board.Inputs.Set(pin, true)
			Expect(loop.Run(1000)).To(Succeed())

			Expect(board.LEDs.IsOn(hal.Blue0)).To(BeFalse())
		})
	})

	Context("with a custom threshold", func() {
		BeforeEach(func() {
			cfg.Threshold = 100
		})

		It("should light after the threshold", func() {
			board.Inputs.Set(pin, true)
			Expect(loop.Run(99)).To(Succeed())
			Expect(board.LEDs.IsOn(hal.Blue0)).To(BeFalse())
			Expect(loop.Step()).To(Succeed())
			Expect(board.LEDs.IsOn(hal.Blue0)).To(BeTrue())
		})
	})

	Context("when the precondition fails", func() {
		BeforeEach(func() {
			cfg.Precondition = func() error { return errors.New("led driver missing") }
		})

		It("should produce no hardware side effects", func() {
			Expect(task.Current()).To(Equal(superloop.StateError))

			board.Inputs.Set(pin, true)
			Expect(loop.Run(5000)).To(Succeed())

			Expect(board.Effects()).To(BeEmpty())
			Expect(task.Current()).To(Equal(superloop.StateError))
		})
	})
})
