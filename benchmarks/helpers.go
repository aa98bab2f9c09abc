// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/realtime"
)

// GenCyclingTask creates a task with n user states that advance one state per tick.
func GenCyclingTask(name string, n int) *superloop.Task {
	if n < 1 {
		n = 1
	}
	states := make([]*superloop.State, 0, n+1)
	first := superloop.StateUser
	last := superloop.StateUser + superloop.StateID(n-1)
	for i := 0; i < n; i++ {
		id := superloop.StateUser + superloop.StateID(i)
		next := id + 1
		if id == last {
			next = first
		}
		states = append(states, &superloop.State{
			ID:   id,
			Name: fmt.Sprintf("s%d", i),
			Run:  func(ctx *superloop.Context) superloop.StateID { return next },
		})
	}
	states[0].Initial = true

	t, err := superloop.NewTask(name, states...)
	if err != nil {
		panic(err)
	}
	return t
}

// GenIdleTask creates a task that stays idle and counts ticks in a Divider.
func GenIdleTask(name string) *superloop.Task {
	d := &superloop.Divider{Period: 250}
	t, err := superloop.NewTask(name, &superloop.State{
		ID:   superloop.StateIdle,
		Name: "idle",
		Run: func(ctx *superloop.Context) superloop.StateID {
			d.Step()
			return superloop.StateIdle
		},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// GenLoop creates an initialized loop running numTasks idle tasks.
func GenLoop(numTasks int) *realtime.Loop {
	l := realtime.NewLoop(realtime.Config{MaxTasks: numTasks})
	for i := 0; i < numTasks; i++ {
		if err := l.Register(GenIdleTask(fmt.Sprintf("task%d", i))); err != nil {
			panic(err)
		}
	}
	if err := l.Initialize(); err != nil {
		panic(err)
	}
	return l
}

// GenSnapshotYAML generates YAML bytes for a snapshot of a loop with numTasks tasks.
func GenSnapshotYAML(numTasks int) []byte {
	l := GenLoop(numTasks)
	if err := l.Run(10); err != nil {
		panic(err)
	}
	data, err := yaml.Marshal(l.Snapshot())
	if err != nil {
		panic(err)
	}
	return data
}
