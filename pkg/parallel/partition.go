package parallel

import (
	"fmt"
)

// Partition splits collection into sub-collections by round-robin striding.
//
// When the collection is longer than parts, exactly parts sub-collections are
// returned and sub-collection k holds the elements at indices k, k+parts,
// k+2*parts and so on. Otherwise every element becomes its own singleton
// sub-collection, in the original order, so no sub-collection is ever empty.
//
// The returned slices never share memory with collection. Partition panics if
// parts is not positive.
func Partition[E any](collection []E, parts int) [][]E {
	if parts <= 0 {
		panic(fmt.Sprintf("parallel: partition count must be positive, got %d", parts))
	}

	n := len(collection)
	if n <= parts {
		plan := make([][]E, n)
		for i, elem := range collection {
			plan[i] = []E{elem}
		}
		return plan
	}

	plan := make([][]E, parts)
	for k := 0; k < parts; k++ {
		sub := make([]E, 0, (n-k+parts-1)/parts)
		for i := k; i < n; i += parts {
			sub = append(sub, collection[i])
		}
		plan[k] = sub
	}
	return plan
}

// PartitionIndices returns, for a collection of length n, the original
// indices that Partition(collection, parts) places in each sub-collection.
func PartitionIndices(n, parts int) [][]int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return Partition(indices, parts)
}
