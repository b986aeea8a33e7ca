package lottery

// EnterEvent is emitted when a player enters the lottery. It carries the full
// list of players of the round.
//
// - implements execution.Event
type EnterEvent struct {
	Players []string `json:"players"`
}

// Name implements execution.Event.
func (EnterEvent) Name() string {
	return "Enter"
}

// DrawEvent is emitted when the pool is paid to the winner.
//
// - implements execution.Event
type DrawEvent struct {
	Winner string `json:"winner"`
	Amount uint64 `json:"amount"`
	Round  uint64 `json:"round"`
}

// Name implements execution.Event.
func (DrawEvent) Name() string {
	return "Draw"
}
