package seed

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/marionette/internal/model"
)

func TestFileSourceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	vecs := []model.FlatVector{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}
	require.NoError(t, WriteFile(path, vecs))

	got, err := FileSource{Path: path}.Seed(3, 4)
	require.NoError(t, err)
	if diff := cmp.Diff(vecs, got); diff != "" {
		t.Errorf("seed mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSourceTakesMostRecentRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	vecs := []model.FlatVector{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	require.NoError(t, WriteFile(path, vecs))

	got, err := FileSource{Path: path}.Seed(2, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, float32(3), got[0][0])
	require.Equal(t, float32(4), got[1][0])
}

func TestFileSourceTooShort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, WriteFile(path, []model.FlatVector{{1, 1}}))

	_, err := FileSource{Path: path}.Seed(5, 2)
	require.ErrorIs(t, err, model.ErrInvalidSeed)
}

func TestFileSourceDimMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, WriteFile(path, []model.FlatVector{{1, 1}, {2, 2}}))

	_, err := FileSource{Path: path}.Seed(2, 4)
	require.ErrorIs(t, err, model.ErrInvalidSeed)
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "absent.json")}.Seed(2, 2)
	require.Error(t, err)
}

func TestSyntheticSourceDeterministic(t *testing.T) {
	a, err := SyntheticSource{}.Seed(30, 58)
	require.NoError(t, err)
	b, err := SyntheticSource{}.Seed(30, 58)
	require.NoError(t, err)

	require.Len(t, a, 30)
	for i := range a {
		require.Len(t, a[i], 58)
		if diff := cmp.Diff(a[i], b[i]); diff != "" {
			t.Fatalf("synthetic seed not deterministic at row %d:\n%s", i, diff)
		}
	}

	// A standing figure has no missing keypoints.
	for _, kp := range model.PoseFromFlat(a[0]) {
		if kp.Missing() {
			t.Errorf("synthetic pose contains missing sentinel at %+v", kp)
		}
	}
}

func TestSyntheticSourceRejectsOddDim(t *testing.T) {
	_, err := SyntheticSource{}.Seed(10, 57)
	if !errors.Is(err, model.ErrInvalidSeed) {
		t.Fatalf("err = %v, want ErrInvalidSeed", err)
	}
}
