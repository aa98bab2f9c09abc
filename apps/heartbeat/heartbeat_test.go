package heartbeat_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/apps/heartbeat"
	"github.com/comalice/superloop/hal"
	"github.com/comalice/superloop/hal/sim"
)

var _ = Describe("Heartbeat", func() {
	var (
		board *sim.Board
		ctx   *superloop.Context
		task  *superloop.Task
	)

	tick := func(n int) {
		for i := 0; i < n; i++ {
			ctx.Advance()
			task.RunActiveState(ctx)
		}
	}

	toggles := func() int {
		n := 0
		for _, e := range board.Effects() {
			if e.Device == "led" && e.Op == "toggle" {
				n++
			}
		}
		return n
	}

	BeforeEach(func() {
		board = sim.NewBoard()
		ctx = superloop.NewContext()
	})

	Context("with the default period", func() {
		BeforeEach(func() {
			var err error
			task, err = heartbeat.New(board.LEDs, heartbeat.Config{LED: hal.Red3})
			Expect(err).ToNot(HaveOccurred())
			task.Initialize(ctx)
			Expect(task.Current()).To(Equal(superloop.StateIdle))
		})

		It("should not toggle before the 250th call", func() {
			tick(249)
			Expect(toggles()).To(Equal(0))
			Expect(board.LEDs.IsOn(hal.Red3)).To(BeFalse())
		})

		It("should toggle exactly once on the 250th call", func() {
			tick(250)
			Expect(toggles()).To(Equal(1))
			Expect(board.LEDs.IsOn(hal.Red3)).To(BeTrue())
		})

		It("should keep a steady period", func() {
			tick(1000)
			Expect(toggles()).To(Equal(4))
			Expect(board.LEDs.IsOn(hal.Red3)).To(BeFalse())
		})
	})

	Context("with a custom period", func() {
		It("should toggle every period", func() {
			var err error
			task, err = heartbeat.New(board.LEDs, heartbeat.Config{LED: hal.Green0, Period: 10})
			Expect(err).ToNot(HaveOccurred())
			task.Initialize(ctx)

			tick(35)
			Expect(toggles()).To(Equal(3))
		})
	})

	Context("when the precondition fails", func() {
		It("should produce no hardware side effects", func() {
			var err error
			task, err = heartbeat.New(board.LEDs, heartbeat.Config{
				LED:          hal.Red3,
				Precondition: func() error { return errors.New("no clock") },
			})
			Expect(err).ToNot(HaveOccurred())

			task.Initialize(ctx)
			Expect(task.Current()).To(Equal(superloop.StateError))

			tick(5000)
			Expect(board.Effects()).To(BeEmpty())
			Expect(task.Current()).To(Equal(superloop.StateError))
		})
	})
})
