package preprocess

import (
	"math"
	"math/rand"
	"sort"
)

// Splitter produces deterministic, optionally stratified row partitions.
// The same seed always yields the same split.
type Splitter struct {
	seed int64
}

// NewSplitter creates a splitter with a fixed seed.
func NewSplitter(seed int64) *Splitter {
	return &Splitter{seed: seed}
}

// Split partitions the indices 0..n-1 into a train and a test set with the
// given test fraction. When labels is non-nil, the split is stratified: each
// label group contributes proportionally to the test set.
func (s *Splitter) Split(n int, labels []string, testFraction float64) (train, test []int) {
	rng := rand.New(rand.NewSource(s.seed))

	if labels == nil {
		perm := rng.Perm(n)
		nTest := int(math.Round(testFraction * float64(n)))
		test = append(test, perm[:nTest]...)
		train = append(train, perm[nTest:]...)
		sort.Ints(train)
		sort.Ints(test)
		return train, test
	}

	groups := make(map[string][]int)
	for i := 0; i < n; i++ {
		groups[labels[i]] = append(groups[labels[i]], i)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		idx := groups[k]
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nTest := int(math.Round(testFraction * float64(len(idx))))
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}
