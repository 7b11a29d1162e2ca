package timeline

import (
	"reflect"
	"sort"
	"testing"

	"vrtask/adapters/rng"
	"vrtask/domain/condition"
)

func countByMode(seq []condition.Mode) map[condition.Mode]int {
	out := make(map[condition.Mode]int)
	for _, m := range seq {
		out[m]++
	}
	return out
}

func TestBuild_ExactCounts(t *testing.T) {
	tests := []struct {
		name     string
		counts   map[condition.Mode]int
		override int
		total    int
	}{
		{
			name: "uniform counts",
			counts: map[condition.Mode]int{
				condition.ModeBinocular:        20,
				condition.ModeMonocularLeft:    20,
				condition.ModeMonocularRight:   20,
				condition.ModeLateralizedLeft:  20,
				condition.ModeLateralizedRight: 20,
			},
			total: 100,
		},
		{
			name: "mixed counts with zero",
			counts: map[condition.Mode]int{
				condition.ModeBinocular:      3,
				condition.ModeMonocularLeft:  0,
				condition.ModeMonocularRight: 7,
			},
			total: 10,
		},
		{
			name: "debug override",
			counts: map[condition.Mode]int{
				condition.ModeBinocular:     20,
				condition.ModeMonocularLeft: 20,
			},
			override: 4,
			total:    8,
		},
		{
			name:   "empty config",
			counts: map[condition.Mode]int{},
			total:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSequencer(rng.New(7))
			seq := s.Build(tt.counts, tt.override)
			if len(seq) != tt.total {
				t.Fatalf("expected %d entries, got %d", tt.total, len(seq))
			}
			got := countByMode(seq)
			for m, want := range tt.counts {
				if tt.override > 0 {
					want = tt.override
				}
				if got[m] != want {
					t.Errorf("mode %s: expected %d entries, got %d", m, want, got[m])
				}
			}
		})
	}
}

// Shuffling must permute, never add or drop: the sorted sequence equals the
// sorted unshuffled concatenation.
func TestBuild_MultisetInvariant(t *testing.T) {
	counts := map[condition.Mode]int{
		condition.ModeBinocular:        5,
		condition.ModeMonocularLeft:    3,
		condition.ModeLateralizedRight: 8,
	}
	seq := NewSequencer(rng.New(99)).Build(counts, 0)

	var want []string
	for m, n := range counts {
		for i := 0; i < n; i++ {
			want = append(want, string(m))
		}
	}
	got := make([]string, len(seq))
	for i, m := range seq {
		got[i] = string(m)
	}
	sort.Strings(want)
	sort.Strings(got)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("multiset changed under shuffle:\nwant %v\ngot  %v", want, got)
	}
}

func TestBuild_SeededReproducibility(t *testing.T) {
	counts := map[condition.Mode]int{
		condition.ModeBinocular:      10,
		condition.ModeMonocularLeft:  10,
		condition.ModeMonocularRight: 10,
	}
	a := NewSequencer(rng.New(123)).Build(counts, 0)
	b := NewSequencer(rng.New(123)).Build(counts, 0)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed must produce the same order")
	}
}

func TestBuild_IndependentSequences(t *testing.T) {
	counts := map[condition.Mode]int{
		condition.ModeBinocular:     30,
		condition.ModeMonocularLeft: 30,
	}
	s := NewSequencer(rng.New(5))
	training := s.Build(counts, 0)
	main := s.Build(counts, 0)
	if reflect.DeepEqual(training, main) {
		t.Fatal("training and main shuffles should be independent draws")
	}
}
