package printsum

import (
	"fmt"
	"io"
	"math"
	"strings"

	"fortio.org/fortio/log"
	"github.com/RoaringBitmap/roaring"
)

type KV struct {
	Key  string
	Verb string
	Val  interface{}
}

func format(header, footer string, kvs []KV) (string, []interface{}) {
	args := make([]interface{}, len(kvs))
	var fmtstring strings.Builder
	fmtstring.WriteString(header)
	fmtstring.WriteString("\n")
	for i, kv := range kvs {
		fmtstring.WriteString("\t")
		fmtstring.WriteString(kv.Key)
		fmtstring.WriteString(" = ")
		fmtstring.WriteString(kv.Verb)
		fmtstring.WriteString("\n")
		args[i] = kv.Val
	}
	fmtstring.WriteString(footer)
	return fmtstring.String(), args
}

// Log writes the summary at info level.
func Log(header, footer string, kvs []KV) {
	f, args := format(header, footer, kvs)
	log.Infof(f, args...)
}

func Fprint(w io.Writer, header, footer string, kvs []KV) error {
	f, args := format(header, footer, kvs)
	_, err := fmt.Fprintf(w, f+"\n", args...)
	return err
}

// ValidityString renders the first n bits of a validity mask: 1 for
// present, _ for absent. A nil mask is all present.
func ValidityString(b *roaring.Bitmap, n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := uint32(0); i < uint32(n); i++ {
		if b == nil || b.Contains(i) {
			sb.WriteString("1")
		} else {
			sb.WriteString("_")
		}
	}
	return sb.String()
}

// Sparkline ranks each value between the min and max of vals into
// 0-9A-F. NaN values are rendered as spaces.
func Sparkline(vals []float64) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := (hi - lo) * 1.0001
	var sb strings.Builder
	sb.Grow(len(vals))
	for _, v := range vals {
		if math.IsNaN(v) {
			sb.WriteByte(' ')
			continue
		}
		rank := 0
		if span > 0 {
			rank = int(16 * (v - lo) / span)
		}
		if rank < 10 {
			sb.WriteByte(byte('0' + rank))
		} else {
			sb.WriteByte(byte('A' + rank - 10))
		}
	}
	return sb.String()
}
