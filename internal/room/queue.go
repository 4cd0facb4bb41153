package room

import (
	"sort"
	"sync"

	"clashfront/server/internal/sim"
)

// actionQueueCap bounds how many validated-but-not-yet-applied commands a
// room holds between ticks, mirroring the teacher's Loop.buffer capacity
// guard (internal/sim/loop.go Enqueue) so a stalled tick loop cannot grow
// this queue without bound.
const actionQueueCap = 256

// actionQueue stages commands off the transport goroutines so only the
// room's own tick goroutine ever touches Engine.Submit, satisfying the
// single-writer discipline (spec.md §5): validation and transport enqueue,
// the tick loop is the sole drainer.
type actionQueue struct {
	mu       sync.Mutex
	commands []sim.Command
}

func newActionQueue() *actionQueue {
	return &actionQueue{commands: make([]sim.Command, 0, actionQueueCap)}
}

// push appends a command and reports true; once the queue holds
// actionQueueCap commands it rejects the new one, leaves the queue as it
// is, and reports false.
func (q *actionQueue) push(cmd sim.Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.commands) >= actionQueueCap {
		return false
	}
	q.commands = append(q.commands, cmd)
	return true
}

// drain returns every staged command whose ClientTick has come due
// (ClientTick <= currentTick), leaving the rest queued for a future tick
// (spec.md §4.H). The returned slice is ordered by (SubmittedAt,
// PlayerID) ascending — a deterministic cross-player tie-break so two
// commands that arrived the same tick apply in the same order on every
// replay, regardless of map iteration order or goroutine scheduling.
func (q *actionQueue) drain(currentTick uint64) []sim.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.commands) == 0 {
		return nil
	}
	ready := make([]sim.Command, 0, len(q.commands))
	pending := q.commands[:0]
	for _, cmd := range q.commands {
		if cmd.ClientTick <= currentTick {
			ready = append(ready, cmd)
		} else {
			pending = append(pending, cmd)
		}
	}
	q.commands = pending
	if ready == nil {
		return nil
	}
	sort.SliceStable(ready, func(i, j int) bool {
		if ready[i].SubmittedAt != ready[j].SubmittedAt {
			return ready[i].SubmittedAt < ready[j].SubmittedAt
		}
		return ready[i].PlayerID < ready[j].PlayerID
	})
	return ready
}
