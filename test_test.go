package balancer

import (
	"bytes"
	"hash"
	"testing"

	"github.com/cespare/xxhash/v2"
)

// setupDigest makes r use predefined digest values for given keys. Keys are
// the exact byte sequences being hashed, e.g. "foo" or "foo-3". Other keys
// are hashed with xxhash.
func setupDigest[T comparable](t testing.TB, r *Ring[T], values map[string]uint64) {
	r.Hash = func() hash.Hash64 {
		return &hash64{
			t:      t,
			values: values,
		}
	}
}

type hash64 struct {
	t      testing.TB
	values map[string]uint64
	buf    bytes.Buffer
}

func (h *hash64) Write(p []byte) (int, error) {
	return h.buf.Write(p)
}

func (h *hash64) Sum(b []byte) []byte {
	panic("balancer: hash Sum() must not be called")
}

func (h *hash64) Reset() {
	h.buf.Reset()
}

func (h *hash64) Size() int {
	return 8
}

func (h *hash64) BlockSize() int {
	return 1
}

func (h *hash64) Sum64() uint64 {
	v, has := h.values[h.buf.String()]
	if has {
		h.t.Logf("using digest value for %#q: %d", h.buf.String(), v)
		return v
	}
	return xxhash.Sum64(h.buf.Bytes())
}
