package bft

import (
	"bytes"

	mio "github.com/vegetish/ledgernotary/pkg/io"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// commitRequest is the replica-to-replica command: a proposed commit
// of inputs against txID on behalf of requester. Its wire form is the
// deterministic fixed encoding of pkg/io, not the general object
// codec, so consensus never depends on schema evolution elsewhere in
// the system.
type commitRequest struct {
	TxID      util.SecureHash
	Inputs    []util.StateRef
	Requester string
}

func encodeCommitRequest(r commitRequest) []byte {
	var buf bytes.Buffer
	w := mio.NewBinWriterFromIO(&buf)
	w.WriteHash(r.TxID)
	w.WriteVarUint(uint64(len(r.Inputs)))
	for _, in := range r.Inputs {
		w.WriteHash(in.TxID)
		w.WriteU32LE(in.Index)
	}
	w.WriteVarBytes([]byte(r.Requester))
	_ = w.Flush()
	return buf.Bytes()
}

func decodeCommitRequest(b []byte) (commitRequest, error) {
	r := mio.NewBinReaderFromIO(bytes.NewReader(b))
	txID := r.ReadHash()
	n := r.ReadVarUint()
	inputs := make([]util.StateRef, 0, n)
	for i := uint64(0); i < n; i++ {
		h := r.ReadHash()
		idx := r.ReadU32LE()
		inputs = append(inputs, util.StateRef{TxID: h, Index: idx})
	}
	requester := r.ReadVarBytes()
	if r.Err != nil {
		return commitRequest{}, r.Err
	}
	return commitRequest{TxID: txID, Inputs: inputs, Requester: string(requester)}, nil
}
