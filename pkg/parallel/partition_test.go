package parallel

import (
	"testing"

	"github.com/vnykmshr/fanout/internal/testutil"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		parts int
		want  int
	}{
		{"more elements than parts", 10, 3, 3},
		{"exact multiple", 12, 4, 4},
		{"one part", 7, 1, 1},
		{"equal lengths", 4, 4, 4},
		{"fewer elements than parts", 3, 8, 3},
		{"single element", 1, 5, 1},
		{"empty", 0, 3, 0},
		{"large", 1000, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Partition(seq(tt.n), tt.parts)
			testutil.AssertEqual(t, len(plan), tt.want)

			seen := make(map[int]int)
			smallest, largest := tt.n, 0
			for _, sub := range plan {
				if len(sub) == 0 {
					t.Fatal("empty sub-collection")
				}
				smallest = min(smallest, len(sub))
				largest = max(largest, len(sub))
				for _, v := range sub {
					seen[v]++
				}
			}

			testutil.AssertEqual(t, len(seen), tt.n)
			for v, count := range seen {
				if count != 1 {
					t.Errorf("element %d appears %d times", v, count)
				}
			}
			if tt.n > 0 && largest-smallest > 1 {
				t.Errorf("sub-collection sizes differ by %d", largest-smallest)
			}
		})
	}
}

func TestPartitionStride(t *testing.T) {
	plan := Partition(seq(8), 3)

	testutil.AssertEqual(t, len(plan), 3)
	testutil.AssertSliceEqual(t, plan[0], []int{0, 3, 6})
	testutil.AssertSliceEqual(t, plan[1], []int{1, 4, 7})
	testutil.AssertSliceEqual(t, plan[2], []int{2, 5})
}

func TestPartitionSingletons(t *testing.T) {
	plan := Partition([]string{"a", "b", "c"}, 5)

	testutil.AssertEqual(t, len(plan), 3)
	for i, want := range []string{"a", "b", "c"} {
		testutil.AssertSliceEqual(t, plan[i], []string{want})
	}
}

func TestPartitionDeterministic(t *testing.T) {
	first := Partition(seq(23), 4)
	second := Partition(seq(23), 4)

	testutil.AssertEqual(t, len(first), len(second))
	for i := range first {
		testutil.AssertSliceEqual(t, first[i], second[i])
	}
}

func TestPartitionDoesNotAlias(t *testing.T) {
	in := seq(6)
	plan := Partition(in, 2)
	plan[0][0] = 99

	testutil.AssertEqual(t, in[0], 0)
}

func TestPartitionPanicsOnInvalidParts(t *testing.T) {
	for _, parts := range []int{0, -1} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Partition(_, %d) did not panic", parts)
				}
			}()
			Partition(seq(3), parts)
		}()
	}
}

func TestPartitionIndices(t *testing.T) {
	indices := PartitionIndices(5, 2)

	testutil.AssertEqual(t, len(indices), 2)
	testutil.AssertSliceEqual(t, indices[0], []int{0, 2, 4})
	testutil.AssertSliceEqual(t, indices[1], []int{1, 3})
}
