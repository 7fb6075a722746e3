package bft

import (
	"bytes"

	mio "github.com/vegetish/ledgernotary/pkg/io"
	"github.com/vegetish/ledgernotary/pkg/uniqueness"
)

func encodeConsumingTxForSnapshot(c uniqueness.ConsumingTx) []byte {
	var buf bytes.Buffer
	w := mio.NewBinWriterFromIO(&buf)
	w.WriteHash(c.TxID)
	w.WriteU32LE(c.InputIndex)
	w.WriteVarBytes([]byte(c.Requester))
	_ = w.Flush()
	return buf.Bytes()
}

func decodeConsumingTxForSnapshot(b []byte) (uniqueness.ConsumingTx, error) {
	r := mio.NewBinReaderFromIO(bytes.NewReader(b))
	txID := r.ReadHash()
	idx := r.ReadU32LE()
	requester := r.ReadVarBytes()
	if r.Err != nil {
		return uniqueness.ConsumingTx{}, r.Err
	}
	return uniqueness.ConsumingTx{TxID: txID, InputIndex: idx, Requester: string(requester)}, nil
}
