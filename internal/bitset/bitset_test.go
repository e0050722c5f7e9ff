package bitset

import "testing"

func TestNewAndHas(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		values   []int
	}{
		{"small", 5, []int{0, 2, 4}},
		{"word boundary", 65, []int{0, 63, 64}},
		{"single", 1, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Of(tt.capacity, tt.values...)
			for _, v := range tt.values {
				if !s.Has(v) {
					t.Errorf("expected set to contain %d", v)
				}
			}
			if s.Count() != len(tt.values) {
				t.Errorf("Count() = %d, want %d", s.Count(), len(tt.values))
			}
			if s.Has(tt.capacity) {
				t.Errorf("set should not contain out-of-range value %d", tt.capacity)
			}
		})
	}
}

func TestWithWithout(t *testing.T) {
	s := New(10)
	if !s.IsEmpty() {
		t.Fatal("new set should be empty")
	}
	s2 := s.With(3)
	if s.Has(3) {
		t.Error("With must not mutate receiver")
	}
	if !s2.Has(3) {
		t.Error("With(3) should contain 3")
	}
	s3 := s2.Without(3)
	if s3.Has(3) {
		t.Error("Without(3) should not contain 3")
	}
	if !s2.Has(3) {
		t.Error("Without must not mutate receiver")
	}
}

func TestUnionIntersectSubtract(t *testing.T) {
	a := Of(8, 0, 1, 2)
	b := Of(8, 1, 2, 3)

	union := a.Union(b)
	for _, v := range []int{0, 1, 2, 3} {
		if !union.Has(v) {
			t.Errorf("union missing %d", v)
		}
	}

	inter := a.Intersect(b)
	if inter.Count() != 2 || !inter.Has(1) || !inter.Has(2) {
		t.Errorf("intersect = %v, want {1,2}", inter.Slice())
	}
	if got := a.IntersectCount(b); got != 2 {
		t.Errorf("IntersectCount() = %d, want 2", got)
	}

	sub := a.Subtract(b)
	if sub.Count() != 1 || !sub.Has(0) {
		t.Errorf("subtract = %v, want {0}", sub.Slice())
	}
}

func TestEqual(t *testing.T) {
	a := Of(8, 1, 2, 3)
	b := Of(8, 3, 2, 1)
	c := Of(8, 1, 2)
	if !a.Equal(b) {
		t.Error("sets with same members in different insertion order should be equal")
	}
	if a.Equal(c) {
		t.Error("sets with different members should not be equal")
	}
}

func TestEachAscending(t *testing.T) {
	s := Of(200, 199, 5, 64, 0, 130)
	var got []int
	s.Each(func(v int) { got = append(got, v) })
	want := []int{0, 5, 64, 130, 199}
	if len(got) != len(want) {
		t.Fatalf("Each produced %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Each order[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
