// Package io implements the fixed, deterministic wire encoding used
// for the transaction id format, the filtered-transaction format and
// BFT replica-to-replica command bytes. It intentionally does not
// depend on the general object serialization codec (out of scope for
// this core): every shape it encodes is a core domain type.
package io

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/vegetish/ledgernotary/pkg/util"
)

// BinWriter writes the primitives this package's formats are built
// from, accumulating the first error seen so callers can chain calls
// without checking every write.
type BinWriter struct {
	w   *bufio.Writer
	Err error
}

// NewBinWriterFromIO wraps w for deterministic encoding.
func NewBinWriterFromIO(w io.Writer) *BinWriter {
	return &BinWriter{w: bufio.NewWriter(w)}
}

func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

func (w *BinWriter) WriteU16LE(v uint16) {
	if w.Err != nil {
		return
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.WriteBytes(b[:])
}

func (w *BinWriter) WriteU32LE(v uint32) {
	if w.Err != nil {
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.WriteBytes(b[:])
}

func (w *BinWriter) WriteU64LE(v uint64) {
	if w.Err != nil {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.WriteBytes(b[:])
}

// WriteVarUint writes v as a LEB128-style variable-length integer.
func (w *BinWriter) WriteVarUint(v uint64) {
	if w.Err != nil {
		return
	}
	var buf []byte
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	buf = append(buf, byte(v))
	w.WriteBytes(buf)
}

// WriteVarBytes writes len(b) as a varint followed by b.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteHash writes a fixed-size 32-byte hash field.
func (w *BinWriter) WriteHash(h util.SecureHash) {
	w.WriteBytes(h[:])
}

// WriteBool writes a single-byte boolean.
func (w *BinWriter) WriteBool(v bool) {
	if v {
		w.WriteBytes([]byte{1})
	} else {
		w.WriteBytes([]byte{0})
	}
}

// Flush drains the underlying buffer, returning any deferred error.
func (w *BinWriter) Flush() error {
	if w.Err != nil {
		return w.Err
	}
	return w.w.Flush()
}

// BinReader is the mirror of BinWriter.
type BinReader struct {
	r   io.Reader
	Err error
}

// NewBinReaderFromIO wraps r for deterministic decoding.
func NewBinReaderFromIO(r io.Reader) *BinReader {
	return &BinReader{r: r}
}

func (r *BinReader) ReadBytes(n int) []byte {
	if r.Err != nil {
		return nil
	}
	b := make([]byte, n)
	_, r.Err = io.ReadFull(r.r, b)
	if r.Err != nil {
		return nil
	}
	return b
}

func (r *BinReader) ReadU16LE() uint16 {
	b := r.ReadBytes(2)
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *BinReader) ReadU32LE() uint32 {
	b := r.ReadBytes(4)
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *BinReader) ReadU64LE() uint64 {
	b := r.ReadBytes(8)
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *BinReader) ReadVarUint() uint64 {
	if r.Err != nil {
		return 0
	}
	var v uint64
	var shift uint
	for {
		b := r.ReadBytes(1)
		if r.Err != nil {
			return 0
		}
		v |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
	}
	return v
}

func (r *BinReader) ReadVarBytes() []byte {
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	return r.ReadBytes(int(n))
}

func (r *BinReader) ReadHash() util.SecureHash {
	b := r.ReadBytes(util.SecureHashSize)
	if r.Err != nil {
		return util.SecureHash{}
	}
	h, err := util.SecureHashFromBytes(b)
	if err != nil {
		r.Err = err
	}
	return h
}

func (r *BinReader) ReadBool() bool {
	b := r.ReadBytes(1)
	if r.Err != nil {
		return false
	}
	return b[0] != 0
}
