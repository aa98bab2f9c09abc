package userapp_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/apps/userapp"
	"github.com/comalice/superloop/hal"
	"github.com/comalice/superloop/hal/sim"
)

var _ = Describe("UserApp", func() {
	var (
		board *sim.Board
		ctx   *superloop.Context
		app   *userapp.App
		task  *superloop.Task
		cfg   userapp.Config
	)

	tick := func(n int) {
		for i := 0; i < n; i++ {
			ctx.Advance()
			task.RunActiveState(ctx)
		}
	}

	lit := func() []hal.LED {
		return board.LEDs.Lit(hal.DotMatrixLEDs)
	}

	BeforeEach(func() {
		board = sim.NewBoard()
		ctx = superloop.NewContext()
		cfg = userapp.Config{}
	})

	JustBeforeEach(func() {
		var err error
		app, task, err = userapp.New(board.LEDs, cfg)
		Expect(err).ToNot(HaveOccurred())
	})

	Context("after Initialize", func() {
		JustBeforeEach(func() {
			board.LEDs.On(hal.LCDBacklight)
			board.LEDs.On(hal.Green2)
			task.Initialize(ctx)
		})

		It("should turn every LED off", func() {
			Expect(lit()).To(BeEmpty())
			Expect(app.Counter()).To(BeZero())
			Expect(app.Colour().Name).To(Equal("red"))
		})

		It("should count once every 250 ticks", func() {
			tick(249)
			Expect(app.Counter()).To(BeZero())
			Expect(lit()).To(BeEmpty())

			tick(1)
			Expect(app.Counter()).To(Equal(uint8(1)))
			Expect(lit()).To(ConsistOf(hal.Red3))
		})

		It("should show the counter in binary", func() {
			tick(250 * 6)
			Expect(app.Counter()).To(Equal(uint8(6)))
			Expect(lit()).To(ConsistOf(hal.Red1, hal.Red2))

			tick(250 * 3)
			Expect(app.Counter()).To(Equal(uint8(9)))
			Expect(lit()).To(ConsistOf(hal.Red0, hal.Red3))
		})

		It("should change colour when the counter wraps", func() {
			tick(250 * 16)
			Expect(app.Counter()).To(BeZero())
			Expect(app.Colour().Name).To(Equal("yellow"))
			Expect(lit()).To(BeEmpty())

			tick(250)
			Expect(lit()).To(ConsistOf(hal.Red3, hal.Green3))
		})

		It("should return to the first colour after white", func() {
			tick(250 * 16 * 6)
			Expect(app.Colour().Name).To(Equal("white"))

			tick(250 * 15)
			Expect(lit()).To(HaveLen(12))

			tick(250)
			Expect(app.Colour().Name).To(Equal("red"))
		})
	})

	Context("with a short period", func() {
		BeforeEach(func() {
			cfg = userapp.Config{Period: 1, CountsPerColour: 2}
		})

		It("should cycle colours quickly", func() {
			task.Initialize(ctx)
			tick(4)
			Expect(app.Colour().Name).To(Equal("green"))
		})
	})

	Context("when the precondition fails", func() {
		BeforeEach(func() {
			cfg.Precondition = func() error { return errors.New("matrix not fitted") }
		})

		It("should produce no hardware side effects", func() {
			task.Initialize(ctx)
			Expect(task.Current()).To(Equal(superloop.StateError))

			tick(250 * 20)
			Expect(board.Effects()).To(BeEmpty())
		})
	})
})
