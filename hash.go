package balancer

import (
	"fmt"
	"io"
	"strconv"
)

// writeKey writes the byte representation of x used for hashing.
func writeKey(w io.Writer, x any) (err error) {
	switch v := x.(type) {
	case string:
		_, err = io.WriteString(w, v)
	case []byte:
		_, err = w.Write(v)
	case io.WriterTo:
		_, err = v.WriteTo(w)
	case fmt.Stringer:
		_, err = io.WriteString(w, v.String())
	case int:
		_, err = io.WriteString(w, strconv.Itoa(v))
	case int64:
		_, err = io.WriteString(w, strconv.FormatInt(v, 10))
	case uint64:
		_, err = io.WriteString(w, strconv.FormatUint(v, 10))
	default:
		_, err = fmt.Fprint(w, v)
	}
	return err
}

// replicaSuffix returns a suffix appended to node identifier to compute i-th
// replica's digest. The 0th replica has no suffix.
func replicaSuffix(i int) []byte {
	if i == 0 {
		return nil
	}
	p := make([]byte, 0, 8)
	p = append(p, '-')
	return strconv.AppendInt(p, int64(i), 10)
}
