// apps/solver-server/internal/solver/entropy.go
//
// Expected information of a guess: bucket the pool by feedback key and take
// the Shannon entropy of the bucket sizes.

package solver

import "math"

// Score returns the expected information, in bits, of guessing guess against
// pool under the naive policy.
func Score(guess Word, pool []Word) float64 {
	return entropy(guess, pool, Encode)
}

// Score returns the expected information of guess against pool under the
// solver's policy.
func (s *Solver) Score(guess Word, pool []Word) float64 {
	if s.policy == PolicyStandard {
		return entropy(guess, pool, EncodeStandard)
	}
	return entropy(guess, pool, Encode)
}

// entropy buckets pool by feedback key and returns the Shannon entropy of the
// partition. An empty pool scores 0.
func entropy(guess Word, pool []Word, encode func(Word, Word) Key) float64 {
	if len(pool) == 0 {
		return 0
	}
	var hist [NumKeys]int
	for _, w := range pool {
		hist[encode(guess, w)]++
	}

	n := float64(len(pool))
	bits := 0.0
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		bits += p * math.Log2(1/p)
	}
	return bits
}

// Partition groups pool by the feedback key guess would produce.
// Bucket order follows pool order.
func (s *Solver) Partition(guess Word, pool []Word) map[Key][]Word {
	out := make(map[Key][]Word)
	for _, w := range pool {
		k := s.Encode(guess, w)
		out[k] = append(out[k], w)
	}
	return out
}
