package quake

import (
	"math"
	"math/rand"
)

// Split shuffles samples with a seeded source and partitions them into a
// training and a holdout set. The holdout receives ceil(n*testFraction)
// samples; every input sample lands in exactly one partition.
func Split(samples []Sample, testFraction float64, seed int64) (train, holdout []Sample) {
	n := len(samples)
	if n == 0 {
		return []Sample{}, []Sample{}
	}

	nTest := int(math.Ceil(float64(n) * testFraction))
	nTest = max(0, min(nTest, n))

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split, not security sensitive
	holdout = make([]Sample, 0, nTest)
	train = make([]Sample, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			holdout = append(holdout, samples[idx])
			continue
		}
		train = append(train, samples[idx])
	}
	return train, holdout
}
