package redstone

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
)

// Network recalculates the power of wire cells. Positions are queued by wire behaviours whenever something near
// them changes and recalculated in FIFO order when the World settles the network. A wire whose power changes queues
// its neighbours in turn, so edits re-converge locally without solving the whole wire graph. Network implements
// world.SignalNetwork and is only used from within World transactions.
type Network struct {
	conf Config

	queue  []cube.Pos
	queued map[cube.Pos]struct{}
}

// Compile time check to make sure Network implements world.SignalNetwork.
var _ world.SignalNetwork = (*Network)(nil)

// Queue queues pos for recalculation. Positions already queued are not queued twice.
func (n *Network) Queue(pos cube.Pos) {
	if _, ok := n.queued[pos]; ok {
		return
	}
	n.queued[pos] = struct{}{}
	n.queue = append(n.queue, pos)
}

// Len returns the amount of queued positions.
func (n *Network) Len() int {
	return len(n.queue)
}

// Metrics returns the metrics registry of the network.
func (n *Network) Metrics() *Metrics {
	return n.conf.Metrics
}

// Settle recalculates queued positions until the queue is empty or the budget of a single settle is spent. Positions
// left over stay queued for the next settle.
func (n *Network) Settle(tx *world.Tx) {
	budget := n.conf.BudgetPerSettle
	for len(n.queue) > 0 && budget > 0 {
		pos := n.queue[0]
		n.queue[0] = cube.Pos{}
		n.queue = n.queue[1:]
		delete(n.queued, pos)

		if n.recalculate(tx, pos) {
			budget--
		}
	}
	if len(n.queue) == 0 {
		n.queue = nil
	} else {
		n.conf.Metrics.IncBackpressure()
		n.conf.Log.Warn("Signal network ran out of budget.", "queued", len(n.queue), "budget", n.conf.BudgetPerSettle)
	}
	n.conf.Metrics.SetQueueSize(len(n.queue))
}

// recalculate recomputes the power of the wire at pos. If it changed, the new power is written, the neighbouring
// and diagonally stepped cells are queued and the neighbours of pos and of each of its neighbours are notified.
// recalculate reports false if pos did not hold wire.
func (n *Network) recalculate(tx *world.Tx, pos cube.Pos) bool {
	s := tx.Block(pos)
	if s.Behaviour().Kind != world.KindWire {
		return false
	}
	n.conf.Metrics.AddOps(1)

	target := TargetPower(tx, pos)
	if s.Int(PowerProperty) == target {
		return true
	}
	updated := s.With(PowerProperty, target)
	tx.SetBlock(pos, updated, world.SuppressNeighbours)
	tx.Emit(world.Event{Kind: world.EventSignal, Pos: pos, State: updated, Level: target})
	n.conf.Metrics.AddWrites(1)

	pos.Neighbours(n.Queue, tx.Range())
	for _, face := range cube.HorizontalFaces() {
		side := pos.Side(face)
		n.Queue(side.Side(cube.FaceUp))
		n.Queue(side.Side(cube.FaceDown))
	}
	tx.NotifyNeighbours(pos)
	pos.Neighbours(tx.NotifyNeighbours, tx.Range())
	return true
}
