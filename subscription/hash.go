package subscription

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hasher accumulates the identity of a recipe. Recipes feed it their static
// configuration only, never runtime state.
type Hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func NewHasher() *Hasher {
	return &Hasher{d: xxhash.New()}
}

func (h *Hasher) Write(p []byte) {
	_, _ = h.d.Write(p)
}

func (h *Hasher) WriteString(s string) {
	_, _ = h.d.WriteString(s)
	// Terminate so "ab"+"c" and "a"+"bc" hash apart.
	h.WriteUint64(uint64(len(s)))
}

func (h *Hasher) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
}

func (h *Hasher) WriteInt64(v int64) {
	h.WriteUint64(uint64(v))
}

func (h *Hasher) WriteFloat64(v float64) {
	h.WriteUint64(math.Float64bits(v))
}

func (h *Hasher) Sum64() uint64 {
	return h.d.Sum64()
}
