package chain

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event is one entry of a receipt's log, keyed by the event name the service
// layer matches against.
type Event struct {
	Name string
	Args map[string]any
}

// Receipt is returned for every successfully included transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	From        common.Address
	Events      []Event
}

// FindEvent returns the first event with the given name, or nil.
func (r *Receipt) FindEvent(name string) *Event {
	for i := range r.Events {
		if r.Events[i].Name == name {
			return &r.Events[i]
		}
	}
	return nil
}

// TxContext is passed through every mutating contract call of a single
// transaction: it carries the caller identity explicitly (no ambient globals)
// and collects emitted events.
type TxContext struct {
	Caller  common.Address
	Time    time.Time
	events  []Event
	adopted []stateContract
}

func (tx *TxContext) Emit(name string, args map[string]any) {
	tx.events = append(tx.events, Event{Name: name, Args: args})
}

// Adopt brings a contract deployed inside this transaction into the node's
// rollback scope. It becomes permanent only if the transaction commits.
func (tx *TxContext) Adopt(c stateContract) {
	tx.adopted = append(tx.adopted, c)
}

// stateContract is implemented by every contract registered with the node so a
// failed transaction can be rolled back wholesale.
type stateContract interface {
	snapshot() any
	restore(any)
}

// Node is an embedded chain: it executes one transaction at a time against the
// registered contracts, exactly like the single-threaded totally-ordered
// execution model of the host chain the production deployment targets. A
// transaction either commits completely or leaves no trace.
type Node struct {
	mu        sync.RWMutex
	contracts []stateContract
	block     uint64
	txCount   uint64
	now       func() time.Time
}

func NewNode() *Node {
	return &Node{now: time.Now}
}

// SetClock overrides the block timestamp source. Tests use this to exercise
// holding-period logic deterministically.
func (n *Node) SetClock(now func() time.Time) {
	n.mu.Lock()
	n.now = now
	n.mu.Unlock()
}

// Register attaches a contract's state to the node's rollback scope. Contracts
// created outside a transaction (at deployment wiring time) must be registered
// before the first Submit that touches them.
func (n *Node) Register(c stateContract) {
	n.mu.Lock()
	n.contracts = append(n.contracts, c)
	n.mu.Unlock()
}

// Submit runs fn as one transaction from the given sender and awaits its
// receipt. On error every registered contract is restored to its pre-tx state.
func (n *Node) Submit(from common.Address, fn func(tx *TxContext) error) (*Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	snaps := make([]any, len(n.contracts))
	for i, c := range n.contracts {
		snaps[i] = c.snapshot()
	}

	tx := &TxContext{Caller: from, Time: n.now()}
	if err := fn(tx); err != nil {
		for i, c := range n.contracts {
			c.restore(snaps[i])
		}
		return nil, err
	}

	n.contracts = append(n.contracts, tx.adopted...)
	n.block++
	n.txCount++
	return &Receipt{
		TxHash:      txHash(n.block, n.txCount, from),
		BlockNumber: n.block,
		From:        from,
		Events:      tx.events,
	}, nil
}

// Query runs fn under the read lock so reads never observe the partial state
// of an in-flight or rolling-back transaction. fn must not mutate contract
// state.
func (n *Node) Query(fn func()) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	fn()
}

func txHash(block, index uint64, from common.Address) common.Hash {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], block)
	binary.BigEndian.PutUint64(buf[8:], index)
	return crypto.Keccak256Hash(buf[:], from.Bytes())
}
