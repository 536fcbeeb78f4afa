package attempt

import "math/rand"

// shuffle permutes items in place with a Fisher–Yates walk. The output is
// always a permutation of the input: nothing added, dropped or duplicated.
func shuffle[T any](items []T, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
