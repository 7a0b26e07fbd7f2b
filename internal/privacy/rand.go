package privacy

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"sync"
)

// The noise source must be cryptographically strong: a seeded PRNG would let
// an observer who recovers the seed strip the noise from published values.
// Reads are buffered because a run draws noise for every field of every
// cohort.
var (
	randBufMu sync.Mutex
	randBuf   io.Reader = bufio.NewReaderSize(cryptorand.Reader, 4096)
)

func randUint64() uint64 {
	randBufMu.Lock()
	defer randBufMu.Unlock()
	var b [8]byte
	if _, err := io.ReadFull(randBuf, b[:]); err != nil {
		// crypto/rand never fails on supported platforms; if it does, the
		// process must not continue publishing un-noised data.
		panic("privacy: out of randomness: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// uniform returns a uniformly distributed float64 in [0, 1) with 53 bits of
// precision.
func uniform() float64 {
	return float64(randUint64()>>11) / (1 << 53)
}

// Intn returns a uniformly random integer in {0, ..., n-1}. It rejects draws
// above the largest multiple of n to avoid modulo bias.
func Intn(n int) int {
	if n <= 0 {
		panic("privacy: Intn called with non-positive n")
	}
	limit := uint64(math.MaxUint64) - uint64(math.MaxUint64)%uint64(n)
	for {
		v := randUint64()
		if v < limit {
			return int(v % uint64(n))
		}
	}
}
