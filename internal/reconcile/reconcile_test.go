package reconcile

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

type course struct {
	ID    int
	Title string
}

func courseID(c course) int { return c.ID }

func catalog(ids ...int) (map[int]course, func(int) (course, bool)) {
	m := make(map[int]course, len(ids))
	for _, id := range ids {
		m[id] = course{ID: id}
	}
	return m, func(id int) (course, bool) {
		c, ok := m[id]
		return c, ok
	}
}

func keys(cs []course) []int {
	out := make([]int, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	slices.Sort(out)
	return out
}

func TestDiff(t *testing.T) {
	add, remove := Diff([]int{1, 2, 2, 5}, []int{3, 2, 3, 4})
	require.Equal(t, []int{3, 4}, add)
	require.Equal(t, []int{1, 5}, remove)

	add, remove = Diff([]int{1}, []int{1})
	require.Empty(t, add)
	require.Empty(t, remove)

	add, remove = Diff[int](nil, nil)
	require.Empty(t, add)
	require.Empty(t, remove)
}

func TestApply_FiveCoursesScenario(t *testing.T) {
	cat, resolve := catalog(1, 2, 3, 4, 5)
	assoc := []course{cat[1], cat[2]}

	out, res := Apply(assoc, []int{2, 3, 9}, courseID, resolve)

	require.Equal(t, []int{2, 3}, keys(out))
	require.Equal(t, []int{3}, res.Added)
	require.Equal(t, []int{1}, res.Removed)
	require.Equal(t, []int{9}, res.Unknown)
	require.True(t, res.Changed())
	require.Equal(t, []int{1, 2}, keys(assoc), "input must not be modified")
}

func TestApply_NilOrEmptyDesiredClears(t *testing.T) {
	cat, resolve := catalog(1, 2, 3)
	assoc := []course{cat[1], cat[2], cat[3]}

	out, res := Apply(assoc, nil, courseID, resolve)
	require.Empty(t, out)
	require.Equal(t, []int{1, 2, 3}, res.Removed)

	out, res = Apply(assoc, []int{}, courseID, resolve)
	require.Empty(t, out)
	require.Len(t, res.Removed, 3)

	out, res = Apply(nil, nil, courseID, resolve)
	require.Empty(t, out)
	require.False(t, res.Changed())
}

func TestApply_Idempotent(t *testing.T) {
	cat, resolve := catalog(1, 2, 3, 4)
	first, _ := Apply([]course{cat[1]}, []int{2, 4}, courseID, resolve)

	second, res := Apply(first, []int{2, 4}, courseID, resolve)
	require.Equal(t, first, second)
	require.False(t, res.Changed())
	require.Empty(t, res.Added)
	require.Empty(t, res.Removed)
}

func TestApply_CollapsesDuplicates(t *testing.T) {
	cat, resolve := catalog(1, 2)
	out, res := Apply([]course{cat[1], cat[1], cat[2], cat[2]}, []int{1, 1}, courseID, resolve)
	require.Equal(t, []int{1}, keys(out))
	require.Equal(t, []int{2}, res.Removed)
	require.Empty(t, res.Added)
}

func TestApply_KeepsExistingItemsAndOrder(t *testing.T) {
	cat, resolve := catalog(1, 2, 3)
	held := course{ID: 2, Title: "in-hand copy"}
	out, _ := Apply([]course{cat[3], held}, []int{1, 2, 3}, courseID, resolve)
	require.Equal(t, []course{cat[3], held, cat[1]}, out)
}

func TestApply_ResultEqualsDesiredForRandomSets(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	known := []int{1, 2, 3, 4, 5, 6, 7, 8}
	cat, resolve := catalog(known...)

	for round := 0; round < 200; round++ {
		var assoc []course
		for _, id := range known {
			if rng.Intn(2) == 0 {
				assoc = append(assoc, cat[id])
			}
		}
		var desired []int
		for i := rng.Intn(10); i > 0; i-- {
			desired = append(desired, 1+rng.Intn(12)) // 9..12 are unknown
		}

		out, res := Apply(assoc, desired, courseID, resolve)

		var want []int
		for _, id := range desired {
			if _, ok := cat[id]; ok && !slices.Contains(want, id) {
				want = append(want, id)
			}
		}
		slices.Sort(want)
		if want == nil {
			want = []int{}
		}
		require.Equal(t, want, keys(out), "round %d", round)
		for _, id := range res.Unknown {
			require.Greater(t, id, 8)
		}

		again, res2 := Apply(out, want, courseID, resolve)
		require.Equal(t, keys(out), keys(again))
		require.False(t, res2.Changed(), "round %d", round)
	}
}
