package window

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crimson-sun/marionette/internal/model"
)

func seedOf(n, dim int) []model.FlatVector {
	seed := make([]model.FlatVector, n)
	for i := range seed {
		seed[i] = make(model.FlatVector, dim)
		for j := range seed[i] {
			seed[i][j] = float32(i)
		}
	}
	return seed
}

func TestNewRejectsInvalidSeed(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, model.ErrInvalidSeed) {
		t.Errorf("empty seed: err = %v, want ErrInvalidSeed", err)
	}

	ragged := []model.FlatVector{{1, 2}, {1, 2, 3}}
	if _, err := New(ragged); !errors.Is(err, model.ErrInvalidSeed) {
		t.Errorf("ragged seed: err = %v, want ErrInvalidSeed", err)
	}

	zero := []model.FlatVector{{}, {}}
	if _, err := New(zero); !errors.Is(err, model.ErrInvalidSeed) {
		t.Errorf("zero-dim seed: err = %v, want ErrInvalidSeed", err)
	}
}

func TestNewCopiesSeed(t *testing.T) {
	seed := seedOf(3, 2)
	w, err := New(seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seed[0][0] = 999
	if w.Current()[0][0] == 999 {
		t.Error("window aliases caller's seed storage")
	}
}

func TestAdvancePreservesLengthAndOrder(t *testing.T) {
	const W = 5
	w, err := New(seedOf(W, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// After N advances the newest entry is the N-th appended vector,
	// the first N seed entries are gone, and length never drifts.
	for n := 1; n <= 8; n++ {
		if err := w.Advance(model.FlatVector{float32(100 + n)}); err != nil {
			t.Fatalf("advance %d: %v", n, err)
		}
		if w.Len() != W {
			t.Fatalf("after %d advances Len = %d, want %d", n, w.Len(), W)
		}

		cur := w.Current()
		if got := cur[W-1][0]; got != float32(100+n) {
			t.Errorf("after %d advances newest = %v, want %v", n, got, 100+n)
		}
		// Seed values and appended values are each strictly increasing,
		// so the surviving sequence must stay strictly increasing.
		for i := 1; i < W; i++ {
			if cur[i][0] <= cur[i-1][0] {
				t.Errorf("after %d advances order broken at %d: %v", n, i, cur)
			}
		}
		for _, v := range cur {
			for dropped := 0; dropped < n && dropped < W; dropped++ {
				if v[0] == float32(dropped) {
					t.Errorf("after %d advances seed entry %d still present", n, dropped)
				}
			}
		}
	}
}

func TestAdvanceContents(t *testing.T) {
	w, err := New([]model.FlatVector{{0, 0}, {1, 1}, {2, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Advance(model.FlatVector{3, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.FlatVector{{1, 1}, {2, 2}, {3, 3}}
	if diff := cmp.Diff(want, w.Current()); diff != "" {
		t.Errorf("window contents (-want +got):\n%s", diff)
	}
}

func TestAdvanceDimensionMismatch(t *testing.T) {
	w, err := New(seedOf(3, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = w.Advance(model.FlatVector{1})
	if !errors.Is(err, model.ErrSchedulingFault) {
		t.Fatalf("err = %v, want ErrSchedulingFault", err)
	}
	if w.Len() != 3 {
		t.Errorf("failed advance changed length to %d", w.Len())
	}
}

func TestAdvanceCopiesVector(t *testing.T) {
	w, err := New(seedOf(2, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := model.FlatVector{7}
	if err := w.Advance(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v[0] = 8
	if got := w.Current()[1][0]; got != 7 {
		t.Errorf("window aliases advanced vector: got %v, want 7", got)
	}
}

func ExampleWindow_Advance() {
	w, _ := New([]model.FlatVector{{0}, {1}, {2}})
	_ = w.Advance(model.FlatVector{3})
	for _, v := range w.Current() {
		fmt.Println(v[0])
	}
	// Output:
	// 1
	// 2
	// 3
}
