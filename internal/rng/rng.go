package rng

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand"
	"sync"
)

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Crypto wraps the crypto/rand library
type Crypto struct{}

// Intn returns a random number from 0 <= x < n
func (c Crypto) Intn(n int) int {
	b, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(b.Int64())
}

// Seeded returns a generator that repeats the same sequence for the same seed
// Unlike *rand.Rand, it is safe for concurrent use
func Seeded(seed int64) Generator {
	return &seeded{r: mathrand.New(mathrand.NewSource(seed))} // nolint:gosec
}

type seeded struct {
	mu sync.Mutex
	r  *mathrand.Rand
}

func (s *seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.r.Intn(n)
}
