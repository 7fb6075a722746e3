package uniqueness

import (
	"bytes"

	mio "github.com/vegetish/ledgernotary/pkg/io"
	"github.com/vegetish/ledgernotary/pkg/util"
)

func encodeStateRef(r util.StateRef) []byte {
	var buf bytes.Buffer
	w := mio.NewBinWriterFromIO(&buf)
	w.WriteHash(r.TxID)
	w.WriteU32LE(r.Index)
	_ = w.Flush()
	return buf.Bytes()
}

func encodeConsumingTx(c ConsumingTx) []byte {
	var buf bytes.Buffer
	w := mio.NewBinWriterFromIO(&buf)
	w.WriteHash(c.TxID)
	w.WriteU32LE(c.InputIndex)
	w.WriteVarBytes([]byte(c.Requester))
	_ = w.Flush()
	return buf.Bytes()
}

func decodeConsumingTx(b []byte) (ConsumingTx, error) {
	r := mio.NewBinReaderFromIO(bytes.NewReader(b))
	txID := r.ReadHash()
	idx := r.ReadU32LE()
	requester := r.ReadVarBytes()
	if r.Err != nil {
		return ConsumingTx{}, r.Err
	}
	return ConsumingTx{TxID: txID, InputIndex: idx, Requester: string(requester)}, nil
}
