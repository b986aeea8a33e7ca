// Package lottery implements a native contract running a pooled-stake
// lottery.
//
// Players enter the lottery by attaching at least the minimum stake to their
// transaction. The operator, who deployed the instance, triggers the draw that
// pays the whole pool to one of the players and starts a new round. Every
// command either applies completely or is rejected with a typed error and no
// change of the state.
package lottery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.dedis.ch/raffle"
	"go.dedis.ch/raffle/core/access"
	"go.dedis.ch/raffle/core/bank"
	"go.dedis.ch/raffle/core/execution"
	"go.dedis.ch/raffle/core/execution/native"
	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/core/store/prefixed"
	"golang.org/x/xerrors"
)

// commands defines the commands of the lottery contract. This interface helps
// in testing the contract.
type commands interface {
	deploy(snap store.Snapshot, step execution.Step) error
	enter(snap store.Snapshot, step execution.Step) error
	pickWinner(snap store.Snapshot, step execution.Step) error
}

const (
	// ContractName is the name of the contract.
	ContractName = "go.dedis.ch/raffle.Lottery"

	// CmdArg is the argument's name to indicate the kind of command we want to
	// run on the contract. Should be one of the Command type.
	CmdArg = "lottery:command"

	// DefaultMinStake is the minimum value to enter the lottery when none is
	// configured.
	DefaultMinStake uint64 = 10
)

// Command defines a type of command for the lottery contract.
type Command string

const (
	// CmdDeploy defines the command to deploy the instance. The caller becomes
	// the operator.
	CmdDeploy Command = "DEPLOY"

	// CmdEnter defines the command to enter the current round.
	CmdEnter Command = "ENTER"

	// CmdPickWinner defines the command to draw the winner of the round.
	CmdPickWinner Command = "PICK_WINNER"
)

var (
	promCommands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "raffle_lottery_commands_total",
		Help: "total number of lottery commands by status",
	}, []string{"command", "status"})

	promPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "raffle_lottery_players",
		Help: "number of players in the current round",
	})

	promPaid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "raffle_lottery_paid_total",
		Help: "total value paid to the winners",
	})
)

func init() {
	raffle.PromCollectors = append(raffle.PromCollectors, promCommands,
		promPlayers, promPaid)
}

// RegisterContract registers the lottery contract to the given execution
// service.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// Contract is the lottery smart contract. It only holds the configuration, the
// state of the instance lives in the snapshot.
//
// - implements native.Contract
type Contract struct {
	minStake uint64
	random   RandomSource
	logger   zerolog.Logger

	// cmd provides the commands executions
	cmd commands
}

// Option is the type of options to create a contract.
type Option func(*Contract)

// WithMinStake is an option to set the minimum stake of the instance. It is
// read at the deployment only.
func WithMinStake(value uint64) Option {
	return func(c *Contract) {
		c.minStake = value
	}
}

// WithRandomSource is an option to set the source of the winner index.
func WithRandomSource(src RandomSource) Option {
	return func(c *Contract) {
		c.random = src
	}
}

// WithLogger is an option to set the logger of the contract.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Contract) {
		c.logger = logger
	}
}

// NewContract creates a new lottery contract.
func NewContract(opts ...Option) Contract {
	contract := Contract{
		minStake: DefaultMinStake,
		random:   NewBlockSource(),
		logger:   raffle.Logger.With().Str("contract", "lottery").Logger(),
	}

	for _, opt := range opts {
		opt(&contract)
	}

	contract.cmd = lotteryCommand{Contract: &contract}

	return contract
}

// Execute implements native.Contract. It runs the appropriate command.
func (c Contract) Execute(snap store.Snapshot, step execution.Step) error {
	cmd := step.Current.GetArg(CmdArg)
	if len(cmd) == 0 {
		return xerrors.Errorf("'%s' not found in tx arg", CmdArg)
	}

	var err error

	switch Command(cmd) {
	case CmdDeploy:
		err = c.cmd.deploy(snap, step)
	case CmdEnter:
		err = c.cmd.enter(snap, step)
	case CmdPickWinner:
		err = c.cmd.pickWinner(snap, step)
	default:
		return xerrors.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		promCommands.WithLabelValues(string(cmd), "rejected").Inc()

		c.logger.Debug().Err(err).Str("command", string(cmd)).Msg("command rejected")

		return xerrors.Errorf("failed to %s: %w", cmd, err)
	}

	promCommands.WithLabelValues(string(cmd), "accepted").Inc()

	return nil
}

// lotteryCommand implements the commands of the lottery contract
//
// - implements commands
type lotteryCommand struct {
	*Contract
}

// deploy implements commands. It binds the caller as the operator of a new
// instance.
func (c lotteryCommand) deploy(snap store.Snapshot, step execution.Step) error {
	caller, err := callerOf(step)
	if err != nil {
		return err
	}

	snap = prefixed.NewSnapshot(ContractName, snap)

	_, found, err := loadState(snap)
	if err != nil {
		return err
	}

	if found {
		return reject(AlreadyDeployed, "instance exists")
	}

	if step.Current.GetValue() > 0 {
		return reject(UnexpectedValue, "deploy does not accept value")
	}

	state := State{
		Manager:  caller,
		MinStake: c.minStake,
	}

	err = storeState(snap, state)
	if err != nil {
		return err
	}

	c.logger.Info().Str("manager", caller).Uint64("minStake", c.minStake).
		Msg("lottery deployed")

	return nil
}

// enter implements commands. It appends the caller to the players of the round
// and adds the attached value to the pool.
func (c lotteryCommand) enter(snap store.Snapshot, step execution.Step) error {
	caller, err := callerOf(step)
	if err != nil {
		return err
	}

	snap = prefixed.NewSnapshot(ContractName, snap)

	state, found, err := loadState(snap)
	if err != nil {
		return err
	}

	if !found {
		return reject(NotDeployed, "no instance")
	}

	value := step.Current.GetValue()

	if value < state.MinStake {
		return reject(InsufficientValue, "%d < %d", value, state.MinStake)
	}

	if caller == state.Manager {
		return reject(Unauthorized, "manager cannot enter")
	}

	if state.HasPlayer(caller) {
		return reject(DuplicateEntry, "'%s' already entered", caller)
	}

	state.Players = append(state.Players, caller)
	state.Pool += value

	err = storeState(snap, state)
	if err != nil {
		return err
	}

	step.Emit(EnterEvent{Players: append([]string{}, state.Players...)})

	promPlayers.Set(float64(len(state.Players)))

	c.logger.Info().Str("player", caller).Uint64("value", value).
		Int("players", len(state.Players)).Msg("player entered")

	return nil
}

// pickWinner implements commands. It pays the pool to a player of the round,
// records the winner and resets the round.
func (c lotteryCommand) pickWinner(snap store.Snapshot, step execution.Step) error {
	caller, err := callerOf(step)
	if err != nil {
		return err
	}

	contractSnap := prefixed.NewSnapshot(ContractName, snap)

	state, found, err := loadState(contractSnap)
	if err != nil {
		return err
	}

	if !found {
		return reject(NotDeployed, "no instance")
	}

	if caller != state.Manager {
		return reject(Unauthorized, "only the manager can pick a winner")
	}

	if step.Current.GetValue() > 0 {
		return reject(UnexpectedValue, "draw does not accept value")
	}

	if len(state.Players) == 0 {
		return reject(EmptyPool, "no player")
	}

	accounts := bank.NewAccounts(snap)
	escrow := bank.EscrowAccount(ContractName)

	balance, err := accounts.Balance(escrow)
	if err != nil {
		return xerrors.Errorf("failed to read escrow: %v", err)
	}

	if balance < state.Pool {
		return reject(TransferFailed, "escrow %d < pool %d", balance, state.Pool)
	}

	index, err := c.random.Index(step, len(state.Players))
	if err != nil {
		return xerrors.Errorf("failed to draw: %v", err)
	}

	if index < 0 || index >= len(state.Players) {
		return xerrors.Errorf("index %d out of range", index)
	}

	winner := state.Players[index]
	amount := state.Pool

	err = accounts.Transfer(escrow, winner, amount)
	if err != nil {
		return reject(TransferFailed, "%v", err)
	}

	state.LastWinner = winner
	state.Players = nil
	state.Pool = 0
	state.Round++

	err = storeState(contractSnap, state)
	if err != nil {
		return err
	}

	step.Emit(DrawEvent{Winner: winner, Amount: amount, Round: state.Round})

	promPlayers.Set(0)
	promPaid.Add(float64(amount))

	c.logger.Info().Str("winner", winner).Uint64("amount", amount).
		Uint64("round", state.Round).Msg("winner paid")

	return nil
}

func callerOf(step execution.Step) (string, error) {
	caller := access.Text(step.Current.GetIdentity())
	if caller == "" {
		return "", reject(Unauthorized, "invalid identity")
	}

	return caller, nil
}
