package main

import (
	"fmt"
	"os"

	. "github.com/comalice/superloop"
)

const (
	StateOn  StateID = StateUser
	StateOff StateID = StateUser + 1
)

func logTransition(msg string) Observer {
	return observerFunc(func(task string, from, to StateID, tick uint64) {
		fmt.Printf("tick %d: %s %d -> %d (%s)\n", tick, task, from, to, msg)
	})
}

type observerFunc func(task string, from, to StateID, tick uint64)

func (f observerFunc) TaskTransition(task string, from, to StateID, tick uint64) {
	f(task, from, to, tick)
}

// ---

func main() {
	var since uint64

	on := State{ID: StateOn, Name: "on", Initial: true, Run: func(ctx *Context) StateID {
		if ctx.IsTimeUp(since, 3) {
			since = ctx.Tick()
			return StateOff
		}
		return StateOn
	}}
	off := State{ID: StateOff, Name: "off", Run: func(ctx *Context) StateID {
		if ctx.IsTimeUp(since, 2) {
			since = ctx.Tick()
			return StateOn
		}
		return StateOff
	}}

	task, err := NewTask("blink", &on, &off)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	task.Observe(logTransition("blink"))

	ctx := NewContext()

	task.Initialize(ctx)

	for i := 0; i < 10; i++ {
		ctx.Advance()
		task.RunActiveState(ctx)
	}
}
