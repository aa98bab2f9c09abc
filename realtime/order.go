package realtime

import (
	"sort"

	"github.com/comalice/superloop"
)

// TaskWithMeta adds ordering metadata to a registered task
type TaskWithMeta struct {
	Task        *superloop.Task
	SequenceNum uint64
	Priority    int
}

// sortTasks orders tasks deterministically
// Stable sort preserves registration order for equal priorities
func sortTasks(tasks []TaskWithMeta) {
	sort.SliceStable(tasks, func(i, j int) bool {
		// Primary: Higher priority first
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority > tasks[j].Priority
		}

		// Secondary: Earlier sequence number first (FIFO)
		return tasks[i].SequenceNum < tasks[j].SequenceNum
	})
}
