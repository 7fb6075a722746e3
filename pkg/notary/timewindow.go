package notary

import (
	"bytes"
	"fmt"
	"time"

	mio "github.com/vegetish/ledgernotary/pkg/io"
)

// TimeWindow is the TIMEWINDOW group's decoded content: an optional
// open or closed interval the notary's clock reading must fall
// within. A nil bound is unbounded on that side.
type TimeWindow struct {
	From          *time.Time
	FromInclusive bool
	To            *time.Time
	ToInclusive   bool
}

// Evaluate checks now against the window, returning a descriptive
// error if it falls outside.
func (w *TimeWindow) Evaluate(now time.Time) error {
	if w.From != nil {
		if w.FromInclusive {
			if now.Before(*w.From) {
				return fmt.Errorf("now %s is before window start %s", now, *w.From)
			}
		} else if !now.After(*w.From) {
			return fmt.Errorf("now %s is not after exclusive window start %s", now, *w.From)
		}
	}
	if w.To != nil {
		if w.ToInclusive {
			if now.After(*w.To) {
				return fmt.Errorf("now %s is after window end %s", now, *w.To)
			}
		} else if !now.Before(*w.To) {
			return fmt.Errorf("now %s is not before exclusive window end %s", now, *w.To)
		}
	}
	return nil
}

// EncodeTimeWindow serializes w as a TIMEWINDOW component using this
// core's deterministic binary codec.
func EncodeTimeWindow(w *TimeWindow) []byte {
	var buf bytes.Buffer
	bw := mio.NewBinWriterFromIO(&buf)
	writeOptionalTime(bw, w.From)
	bw.WriteBool(w.FromInclusive)
	writeOptionalTime(bw, w.To)
	bw.WriteBool(w.ToInclusive)
	_ = bw.Flush()
	return buf.Bytes()
}

// DecodeTimeWindow parses a TIMEWINDOW component previously produced
// by EncodeTimeWindow.
func DecodeTimeWindow(b []byte) (*TimeWindow, error) {
	br := mio.NewBinReaderFromIO(bytes.NewReader(b))
	from := readOptionalTime(br)
	fromIncl := br.ReadBool()
	to := readOptionalTime(br)
	toIncl := br.ReadBool()
	if br.Err != nil {
		return nil, fmt.Errorf("notary: decoding time window: %w", br.Err)
	}
	return &TimeWindow{From: from, FromInclusive: fromIncl, To: to, ToInclusive: toIncl}, nil
}

func writeOptionalTime(w *mio.BinWriter, t *time.Time) {
	if t == nil {
		w.WriteBool(false)
		return
	}
	w.WriteBool(true)
	w.WriteU64LE(uint64(t.UnixNano()))
}

func readOptionalTime(r *mio.BinReader) *time.Time {
	if !r.ReadBool() {
		return nil
	}
	nanos := r.ReadU64LE()
	t := time.Unix(0, int64(nanos)).UTC()
	return &t
}
