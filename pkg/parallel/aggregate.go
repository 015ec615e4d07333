package parallel

// Flatten concatenates batches in order, keeping each batch's internal order.
func Flatten[R any](batches [][]R) []R {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	flat := make([]R, 0, total)
	for _, b := range batches {
		flat = append(flat, b...)
	}
	return flat
}

// Restore reorders a flattened result list back into input order. indices is
// the PartitionIndices plan that produced flat; it must cover exactly
// len(flat) positions.
func Restore[R any](flat []R, indices [][]int) []R {
	out := make([]R, len(flat))
	pos := 0
	for _, group := range indices {
		for _, i := range group {
			out[i] = flat[pos]
			pos++
		}
	}
	return out
}
