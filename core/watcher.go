// Package core implements the tools shared by the ledger components.
package core

import "sync"

// Observer receives the events of a watcher.
type Observer interface {
	NotifyCallback(event interface{})
}

// Watcher dispatches the events to the observers in the order they were
// added. An observer is added at most once.
type Watcher struct {
	sync.Mutex

	observers []Observer
}

// NewWatcher creates a new empty watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Add adds the observer, unless it is already watching.
func (w *Watcher) Add(observer Observer) {
	w.Lock()
	defer w.Unlock()

	if w.indexOf(observer) >= 0 {
		return
	}

	w.observers = append(w.observers, observer)
}

// Remove removes the observer. It does nothing if the observer is unknown.
func (w *Watcher) Remove(observer Observer) {
	w.Lock()
	defer w.Unlock()

	index := w.indexOf(observer)
	if index < 0 {
		return
	}

	w.observers = append(w.observers[:index:index], w.observers[index+1:]...)
}

// Len returns the number of observers currently watching.
func (w *Watcher) Len() int {
	w.Lock()
	defer w.Unlock()

	return len(w.observers)
}

// Notify calls the observers one after the other with the event. The list is
// copied beforehand so that an observer can remove itself during the call.
func (w *Watcher) Notify(event interface{}) {
	w.Lock()
	observers := append([]Observer{}, w.observers...)
	w.Unlock()

	for _, obs := range observers {
		obs.NotifyCallback(event)
	}
}

func (w *Watcher) indexOf(observer Observer) int {
	for i, obs := range w.observers {
		if obs == observer {
			return i
		}
	}

	return -1
}

// ObserverFunc is an adapter to use a function as an observer. The adapter
// must be used through a pointer so that it can be removed from a watcher.
//
// - implements core.Observer
type ObserverFunc struct {
	fn func(event interface{})
}

// NewObserver returns an observer that calls the function for each event.
func NewObserver(fn func(event interface{})) *ObserverFunc {
	return &ObserverFunc{fn: fn}
}

// NotifyCallback implements core.Observer.
func (o *ObserverFunc) NotifyCallback(event interface{}) {
	o.fn(event)
}
