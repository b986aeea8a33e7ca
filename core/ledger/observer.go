package ledger

// watchBuffer is the number of events a watcher can lag behind before it
// misses some.
const watchBuffer = 32

// observer forwards the events to a channel. It is notified while the ledger
// is locked, so an event is dropped when the channel is full.
type observer struct {
	ch chan Event
}

func (obs observer) NotifyCallback(event interface{}) {
	select {
	case obs.ch <- event.(Event):
	default:
	}
}
