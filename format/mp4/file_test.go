package mp4

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/mp4edts/format/mp4/mp4io"
	"github.com/ugparu/mp4edts/internal/mp4test"
	"github.com/ugparu/mp4edts/utils"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func dirEntries(t *testing.T, dir string) (names []string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return
}

func TestPatchFile(t *testing.T) {
	t.Parallel()

	movie := mp4test.Movie()
	in := writeTemp(t, "in.mp4", movie)
	out := filepath.Join(filepath.Dir(in), "out.mp4")

	require.NoError(t, PatchFile(in, out))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	want, _, err := Patch(movie)
	require.NoError(t, err)
	require.Equal(t, want, got)

	src, err := os.ReadFile(in)
	require.NoError(t, err)
	require.Equal(t, movie, src)
}

func TestPatchFileNoMoov(t *testing.T) {
	t.Parallel()

	in := writeTemp(t, "in.mp4", mp4test.File(mp4test.Ftyp(), mp4test.Mdat(4)))
	out := filepath.Join(filepath.Dir(in), "out.mp4")

	var noMoov *utils.NoMovieError
	require.ErrorAs(t, PatchFile(in, out), &noMoov)
	require.NoFileExists(t, out)
}

func TestPatchFileEditList(t *testing.T) {
	t.Parallel()

	movie := mp4test.Movie()
	in := writeTemp(t, "in.mp4", movie)
	out := filepath.Join(filepath.Dir(in), "out.mp4")

	require.True(t, PatchFileEditList(in, out, 3.5, 12))
	got, err := os.ReadFile(out)
	require.NoError(t, err)

	// head and material lengths do not influence the result
	other := filepath.Join(filepath.Dir(in), "other.mp4")
	require.True(t, PatchFileEditList(in, other, 0, 0))
	otherGot, err := os.ReadFile(other)
	require.NoError(t, err)
	require.Equal(t, got, otherGot)

	info, err := Inspect(got)
	require.NoError(t, err)
	require.Equal(t, uint32(1000), info.TimeScale)
	require.Len(t, info.Tracks, 1)
	require.Equal(t, 1, info.Tracks[0].EditBoxes)
	require.Equal(t, []mp4io.EditListEntry{{SegmentDuration: 50000, MediaRateInteger: 1}}, info.Tracks[0].EditList)
}

func TestPatchFileEditListSamePath(t *testing.T) {
	t.Parallel()

	movie := mp4test.Movie()
	path := writeTemp(t, "in.mp4", movie)

	require.True(t, PatchFileEditList(path, path, 0, 0))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want, _, _ := Patch(movie)
	require.Equal(t, want, got)
}

func TestPatchFileEditListSkipped(t *testing.T) {
	t.Parallel()

	tests := map[string][]byte{
		"no_moov":      mp4test.File(mp4test.Ftyp(), mp4test.Free(8), mp4test.Mdat(100)),
		"moov_overrun": mp4test.File(mp4test.Ftyp(), mp4test.Moov(1000, mp4test.Trak(1, 0, 44100, 2205000)))[:200],
		"garbage":      []byte("not an mp4 file at all"),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			in := writeTemp(t, "in.mp4", data)
			out := filepath.Join(filepath.Dir(in), "out.mp4")

			require.False(t, PatchFileEditList(in, out, 0, 0))
			got, err := os.ReadFile(out)
			require.NoError(t, err)
			require.Equal(t, data, got)

			require.False(t, PatchFileEditList(in, in, 0, 0))
			got, err = os.ReadFile(in)
			require.NoError(t, err)
			require.Equal(t, data, got)
		})
	}
}

func TestPatchFileEditListMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp4")
	require.False(t, PatchFileEditList(filepath.Join(dir, "missing.mp4"), out, 0, 0))
	require.NoFileExists(t, out)
}

func TestPatchFileEditListUnwritableOutput(t *testing.T) {
	t.Parallel()

	in := writeTemp(t, "in.mp4", mp4test.Movie())
	out := filepath.Join(filepath.Dir(in), "no", "such", "dir.mp4")
	require.False(t, PatchFileEditList(in, out, 0, 0))
}

func TestPatchMixedVideoInPlace(t *testing.T) {
	t.Parallel()

	movie := mp4test.Movie()
	path := writeTemp(t, "video.mp4", movie)
	require.NoError(t, os.Chmod(path, 0o640))

	require.True(t, PatchMixedVideo(path, 2, 30, true))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want, _, _ := Patch(movie)
	require.Equal(t, want, got)
	require.Equal(t, []string{"video.mp4"}, dirEntries(t, filepath.Dir(path)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestPatchMixedVideoInPlaceSkipped(t *testing.T) {
	t.Parallel()

	data := mp4test.File(mp4test.Ftyp(), mp4test.Mdat(10))
	path := writeTemp(t, "video.mp4", data)
	before, err := os.Stat(path)
	require.NoError(t, err)

	require.False(t, PatchMixedVideo(path, 2, 30, true))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.Equal(t, []string{"video.mp4"}, dirEntries(t, filepath.Dir(path)))
	after, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, os.SameFile(before, after))
}

func TestPatchMixedVideoInPlaceMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.False(t, PatchMixedVideo(filepath.Join(dir, "missing.mp4"), 0, 0, true))
	require.Empty(t, dirEntries(t, dir))

	require.False(t, PatchMixedVideo(filepath.Join(dir, "no", "dir.mp4"), 0, 0, true))
}

func TestPatchMixedVideoDirect(t *testing.T) {
	t.Parallel()

	movie := mp4test.Movie()
	path := writeTemp(t, "video.mp4", movie)
	require.True(t, PatchMixedVideo(path, 0, 0, false))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want, _, _ := Patch(movie)
	require.Equal(t, want, got)
}

func TestPatchMixedVideoConcurrent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	movie := mp4test.Movie()
	want, _, _ := Patch(movie)
	paths := make([]string, 8)
	for i := range paths {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".mp4")
		require.NoError(t, os.WriteFile(paths[i], movie, 0o644))
	}

	var wg sync.WaitGroup
	results := make([]bool, len(paths))
	for i, path := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = PatchMixedVideo(path, 0, 0, true)
		}()
	}
	wg.Wait()

	for i, path := range paths {
		require.True(t, results[i])
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.Len(t, dirEntries(t, dir), len(paths))
}

func TestInspect(t *testing.T) {
	t.Parallel()

	old := mp4test.EditBox(mp4io.EditListEntry{SegmentDuration: 100, MediaTime: 2048, MediaRateInteger: 1})
	movie := mp4test.File(mp4test.Ftyp(), mp4test.Box("moov",
		mp4test.Mvhd(1, 600),
		mp4test.Box("trak", mp4test.Tkhd(1), old, old, mp4test.Mdia(mp4test.Mdhd(0, 48000, 96000))),
		mp4test.Box("trak", mp4test.Tkhd(2)),
	))

	info, err := Inspect(movie)
	require.NoError(t, err)
	require.Equal(t, &MovieInfo{
		MajorBrand: "isom",
		TimeScale:  600,
		Tracks: []TrackInfo{
			{
				Index:     0,
				TrackID:   1,
				TimeScale: 48000,
				Duration:  96000,
				EditBoxes: 2,
				EditList:  []mp4io.EditListEntry{{SegmentDuration: 100, MediaTime: 2048, MediaRateInteger: 1}},
			},
			{Index: 1, TrackID: 2},
		},
	}, info)

	_, err = Inspect(mp4test.Ftyp())
	var noMoov *utils.NoMovieError
	require.ErrorAs(t, err, &noMoov)

	_, err = InspectFile(filepath.Join(t.TempDir(), "missing.mp4"))
	require.Error(t, err)
}

func TestDumpTree(t *testing.T) {
	t.Parallel()

	out, _, err := Patch(mp4test.Movie())
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, DumpTree(&sb, bytes.NewReader(out)))
	dump := sb.String()
	require.Contains(t, dump, "ftyp offset=0")
	require.Contains(t, dump, "\n  mvhd offset=")
	require.Contains(t, dump, "version=0 timescale=1000")
	require.Contains(t, dump, "\n      elst offset=")
	require.Contains(t, dump, "version=1 entries=1 [50000 0 1.0]")
	require.Contains(t, dump, "timescale=44100 duration=2205000")
}
