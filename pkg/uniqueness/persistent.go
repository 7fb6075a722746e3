package uniqueness

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vegetish/ledgernotary/pkg/storage"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// notificationQueueSize bounds the commit-event channel; under
// back-pressure the oldest event is dropped so a slow subscriber never
// blocks a commit.
const notificationQueueSize = 256

// PersistentProvider is the single-node uniqueness provider: an
// append-only map guarded by a mutex around a read-then-multi-write
// critical section, so commit's conflict check and its writes happen
// as one serialized unit per process.
type PersistentProvider struct {
	mtx    sync.Mutex
	ledger *storage.AppendOnlyMap[util.StateRef, ConsumingTx]
	log    *zap.Logger
	events chan CommitEvent
}

// NewPersistentProvider builds a PersistentProvider over backend, with
// an LRU front cache of cacheSize entries.
func NewPersistentProvider(backend storage.Backend, cacheSize int, log *zap.Logger) (*PersistentProvider, error) {
	ledger, err := storage.NewAppendOnlyMap[util.StateRef, ConsumingTx](
		backend, cacheSize, log, encodeStateRef, encodeConsumingTx, decodeConsumingTx,
	)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PersistentProvider{
		ledger: ledger,
		log:    log,
		events: make(chan CommitEvent, notificationQueueSize),
	}, nil
}

// Commit implements Provider. The conflict check and the writes for
// every input run inside a single durable backend transaction (via
// AppendOnlyMap.CommitBatch), so a crash between recording input #1
// and input #3 of a three-input commit cannot happen: either all of
// them land, or none do.
func (p *PersistentProvider) Commit(inputs []util.StateRef, txID util.SecureHash, requester string) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	values := make([]ConsumingTx, len(inputs))
	for i := range inputs {
		values[i] = ConsumingTx{TxID: txID, InputIndex: uint32(i), Requester: requester}
	}

	conflictByIdx, err := p.ledger.CommitBatch(inputs, values, func(existing, candidate ConsumingTx) bool {
		return !existing.TxID.Equals(candidate.TxID)
	})
	if err != nil {
		return err
	}
	if len(conflictByIdx) > 0 {
		conflictsTotal.Inc()
		conflict := make(Conflict, len(conflictByIdx))
		for i, existing := range conflictByIdx {
			conflict[inputs[i]] = existing
		}
		return &UniquenessError{Conflict: conflict}
	}

	commitsTotal.Inc()
	p.publish(CommitEvent{TxID: txID, Inputs: inputs, Requester: requester})
	return nil
}

// Subscribe implements Provider.
func (p *PersistentProvider) Subscribe() <-chan CommitEvent {
	return p.events
}

func (p *PersistentProvider) publish(ev CommitEvent) {
	select {
	case p.events <- ev:
	default:
		select {
		case <-p.events:
			p.log.Warn("commit event queue full, dropping oldest notification")
		default:
		}
		select {
		case p.events <- ev:
		default:
		}
	}
}

var _ Provider = (*PersistentProvider)(nil)
