package icons

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"appimage-installer/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBundle writes a shell script that mimics --appimage-extract by copying
// the given files into squashfs-root.
func fakeBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	script := "#!/bin/sh\nmkdir -p squashfs-root\n"
	for rel, src := range files {
		script += "mkdir -p \"squashfs-root/" + filepath.Dir(rel) + "\"\n"
		script += "cp \"" + src + "\" \"squashfs-root/" + rel + "\"\n"
	}
	path := filepath.Join(t.TempDir(), "Fake.AppImage")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

type recordingObserver struct {
	mu     sync.Mutex
	states []State
}

func (o *recordingObserver) observe(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, s)
}

type fakeExtractor struct{ err error }

func (f fakeExtractor) Extract(ctx context.Context, bundle, dst string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dst, DefaultIcon(), 0644)
}

func TestBundleExtractor_ExtractsTopLevelPNG(t *testing.T) {
	icon := writeTemp(t, "app.png", pngBytes(t, 48, 48, color.RGBA{255, 0, 0, 255}))
	bundle := fakeBundle(t, map[string]string{"app.png": icon})
	dst := filepath.Join(t.TempDir(), "Fake.png")

	err := (&BundleExtractor{Timeout: 5 * time.Second}).Extract(context.Background(), bundle, dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, Size, decodePNG(t, data).Bounds().Dx())
}

func TestBundleExtractor_SkipsUnusableImages(t *testing.T) {
	broken := writeTemp(t, "broken.png", []byte("not a png"))
	svg := writeTemp(t, "logo.svg", []byte(redSquareSVG))
	bundle := fakeBundle(t, map[string]string{"broken.png": broken, "logo.svg": svg})
	dst := filepath.Join(t.TempDir(), "Fake.png")

	require.NoError(t, (&BundleExtractor{}).Extract(context.Background(), bundle, dst))
	assert.FileExists(t, dst)
}

func TestBundleExtractor_NoIcon(t *testing.T) {
	bundle := fakeBundle(t, nil)
	dst := filepath.Join(t.TempDir(), "Fake.png")

	err := (&BundleExtractor{}).Extract(context.Background(), bundle, dst)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
	assert.NoFileExists(t, dst)
}

func TestRankImages_Order(t *testing.T) {
	root := t.TempDir()
	files := []string{
		".DirIcon",
		"app.svg",
		"usr/share/icons/hicolor/48x48/apps/app.png",
		"usr/share/icons/hicolor/256x256/apps/app.png",
		"app.png",
		"readme.txt",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	ranked := rankImages(root)
	var rel []string
	for _, p := range ranked {
		r, _ := filepath.Rel(root, p)
		rel = append(rel, r)
	}
	assert.Equal(t, []string{
		"app.png",
		"usr/share/icons/hicolor/256x256/apps/app.png",
		"usr/share/icons/hicolor/48x48/apps/app.png",
		"app.svg",
		".DirIcon",
	}, rel)
}

func TestResolve_ExtractionWins(t *testing.T) {
	obs := &recordingObserver{}
	r := &Resolver{IconDir: t.TempDir(), Extractor: fakeExtractor{}, Observer: obs.observe}

	res, err := r.Resolve(context.Background(), "Foo", "/x/Foo.AppImage", FirstCandidate)
	require.NoError(t, err)
	assert.Equal(t, SourceExtracted, res.Source)
	assert.Equal(t, r.IconPath("Foo"), res.Path)
	assert.Equal(t, []State{StateExtracting, StateDone}, obs.states)
}

func TestResolve_SearchAfterFailedExtraction(t *testing.T) {
	srv := imageServer(t)
	p := &staticProvider{name: "one", urls: []string{srv.URL + "/good.png"}}
	obs := &recordingObserver{}

	r := &Resolver{
		IconDir:   t.TempDir(),
		Extractor: fakeExtractor{err: apperr.NotFound("no icon", nil)},
		Searcher:  newTestSearcher(t, srv, p),
		Observer:  obs.observe,
	}

	res, err := r.Resolve(context.Background(), "Foo", "/x/Foo.AppImage", FirstCandidate)
	require.NoError(t, err)
	assert.Equal(t, SourceSearch, res.Source)
	assert.Equal(t, srv.URL+"/good.png", res.URL)
	assert.FileExists(t, res.Path)
	assert.Equal(t, []State{StateExtracting, StateSearching, StateAggregating, StateDone}, obs.states)

	entries, _ := os.ReadDir(r.Searcher.TempDir)
	assert.Empty(t, entries, "session files should be removed")
}

func TestResolve_DefaultWhenNothingFound(t *testing.T) {
	r := &Resolver{
		IconDir:   t.TempDir(),
		Extractor: fakeExtractor{err: errors.New("no")},
		Searcher:  newTestSearcher(t, nil),
	}

	res, err := r.Resolve(context.Background(), "Foo", "/x/Foo.AppImage", FirstCandidate)
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, res.Source)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, DefaultIcon(), data)
}

func TestResolve_UserCancelsSelection(t *testing.T) {
	srv := imageServer(t)
	p := &staticProvider{name: "one", urls: []string{srv.URL + "/good.png"}}
	r := &Resolver{IconDir: t.TempDir(), Searcher: newTestSearcher(t, srv, p)}

	cancel := ChooserFunc(func(ctx context.Context, name string, s *Session) (string, error) {
		for range s.Events() {
		}
		return "", nil
	})

	res, err := r.Resolve(context.Background(), "Foo", "/x/Foo.AppImage", cancel)
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, res.Source)
}

func TestResolve_FatalSearchStillFallsBack(t *testing.T) {
	s := NewSearcher(nil, time.Second)
	s.Client = nil
	r := &Resolver{IconDir: t.TempDir(), Searcher: s}

	res, err := r.Resolve(context.Background(), "Foo", "/x/Foo.AppImage", FirstCandidate)
	assert.True(t, apperr.Is(err, apperr.KindFatal))
	assert.Equal(t, SourceDefault, res.Source)
	assert.FileExists(t, res.Path)
}

func TestImport(t *testing.T) {
	r := &Resolver{IconDir: t.TempDir()}
	src := writeTemp(t, "custom.png", pngBytes(t, 20, 20, color.White))

	path, err := r.Import(src, "Foo")
	require.NoError(t, err)
	assert.Equal(t, r.IconPath("Foo"), path)

	_, err = r.Import(filepath.Join(t.TempDir(), "missing.png"), "Foo")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	bad := writeTemp(t, "bad.png", []byte("nope"))
	_, err = r.Import(bad, "Foo")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "extracting", StateExtracting.String())
	assert.Equal(t, "unknown", State(42).String())
}
