// Package notarychange builds and runs the notary-change protocol:
// atomically reassigning a state's notary without otherwise touching
// it. See spec.md §4.5.
package notarychange

import (
	"bytes"
	"fmt"

	mio "github.com/vegetish/ledgernotary/pkg/io"
)

// OutputState is the wire shape of one output's identity: its opaque
// payload, the notary currently servicing it (a compressed public key,
// the same encoding pkg/notary's NOTARY component uses), and an
// optional encumbrance pointing at a co-spend output by index.
type OutputState struct {
	Data        []byte
	Notary      []byte
	Encumbrance *uint32
}

// EncodeOutputState serializes s as an OUTPUTS component.
func EncodeOutputState(s OutputState) []byte {
	var buf bytes.Buffer
	w := mio.NewBinWriterFromIO(&buf)
	w.WriteVarBytes(s.Data)
	w.WriteVarBytes(s.Notary)
	if s.Encumbrance != nil {
		w.WriteBool(true)
		w.WriteU32LE(*s.Encumbrance)
	} else {
		w.WriteBool(false)
	}
	_ = w.Flush()
	return buf.Bytes()
}

// DecodeOutputState is the mirror of EncodeOutputState.
func DecodeOutputState(b []byte) (OutputState, error) {
	r := mio.NewBinReaderFromIO(bytes.NewReader(b))
	data := r.ReadVarBytes()
	notaryKey := r.ReadVarBytes()
	var enc *uint32
	if r.ReadBool() {
		v := r.ReadU32LE()
		enc = &v
	}
	if r.Err != nil {
		return OutputState{}, fmt.Errorf("notarychange: decoding output state: %w", r.Err)
	}
	return OutputState{Data: data, Notary: notaryKey, Encumbrance: enc}, nil
}
