package media

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// smallest valid PNG header plus IHDR chunk, enough for sniffing
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func newLifecycle(t *testing.T) (*Lifecycle, *LocalStore) {
	t.Helper()
	store := NewLocalStore(t.TempDir(), "/media/")
	return NewLifecycle(store, zap.NewNop()), store
}

func TestLocalStore_SaveRemove(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/media")

	require.NoError(t, store.Save("uploaded_images/a/b.png", pngBytes))
	assert.True(t, store.Exists("uploaded_images/a/b.png"))
	assert.Equal(t, "/media/uploaded_images/a/b.png", store.URL("uploaded_images/a/b.png"))

	require.NoError(t, store.Remove("uploaded_images/a/b.png"))
	assert.False(t, store.Exists("uploaded_images/a/b.png"))
	// already gone
	require.NoError(t, store.Remove("uploaded_images/a/b.png"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/media")

	err := store.Save("../escape.png", pngBytes)
	assert.ErrorIs(t, err, ErrUnsafePath)
	assert.ErrorIs(t, store.Remove("/etc/passwd"), ErrUnsafePath)
	assert.Empty(t, store.URL(""))
}

func TestBatch_ReplaceRemovesOldOnCommit(t *testing.T) {
	lc, store := newLifecycle(t)
	require.NoError(t, store.Save("uploaded_images/old.png", pngBytes))

	b := lc.Begin()
	require.NoError(t, b.Put("uploaded_images/new.png", pngBytes))
	b.Replace("uploaded_images/old.png", "uploaded_images/new.png")
	require.NoError(t, b.Commit())

	assert.False(t, store.Exists("uploaded_images/old.png"))
	assert.True(t, store.Exists("uploaded_images/new.png"))
}

func TestBatch_ReplaceSamePathIsNoop(t *testing.T) {
	lc, store := newLifecycle(t)
	require.NoError(t, store.Save("uploaded_images/same.png", pngBytes))

	b := lc.Begin()
	b.Replace("uploaded_images/same.png", "uploaded_images/same.png")
	assert.Empty(t, b.Pending())
	require.NoError(t, b.Commit())
	assert.True(t, store.Exists("uploaded_images/same.png"))
}

func TestBatch_ReleasedThenRewrittenSurvives(t *testing.T) {
	lc, store := newLifecycle(t)
	path, err := ThumbnailPath(7, "png")
	require.NoError(t, err)
	require.NoError(t, store.Save(path, pngBytes))

	b := lc.Begin()
	b.Release(path)
	require.NoError(t, b.Put(path, pngBytes))
	require.NoError(t, b.Commit())

	assert.True(t, store.Exists(path))
}

func TestBatch_KeepProtectsReleasedPath(t *testing.T) {
	lc, store := newLifecycle(t)
	require.NoError(t, store.Save("uploaded_images/thumbnails/1.png", pngBytes))
	require.NoError(t, store.Save("uploaded_images/thumbnails/2.png", pngBytes))

	b := lc.Begin()
	b.Release("uploaded_images/thumbnails/1.png")
	b.Release("uploaded_images/thumbnails/2.png")
	b.Keep("uploaded_images/thumbnails/1.png")
	assert.Equal(t, []string{"uploaded_images/thumbnails/2.png"}, b.Pending())
	require.NoError(t, b.Commit())

	assert.True(t, store.Exists("uploaded_images/thumbnails/1.png"))
	assert.False(t, store.Exists("uploaded_images/thumbnails/2.png"))
}

func TestBatch_RollbackRemovesOnlyNewFiles(t *testing.T) {
	lc, store := newLifecycle(t)
	require.NoError(t, store.Save("uploaded_images/existing.png", pngBytes))

	b := lc.Begin()
	require.NoError(t, b.Put("uploaded_images/existing.png", pngBytes))
	require.NoError(t, b.Put("uploaded_images/fresh.png", pngBytes))
	b.Release("uploaded_images/existing.png")
	b.Rollback()

	assert.True(t, store.Exists("uploaded_images/existing.png"))
	assert.False(t, store.Exists("uploaded_images/fresh.png"))
	assert.Empty(t, b.Pending())
}

func TestDecodeDataURI(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString(pngBytes)

	img, err := DecodeDataURI("data:image/png;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, pngBytes, img.Data)

	svg := `<svg xmlns="http://www.w3.org/2000/svg"/>`
	img, err = DecodeDataURI("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)))
	require.NoError(t, err)
	assert.Equal(t, "svg", img.Ext)

	// the extension follows the content, not the declared subtype
	img, err = DecodeDataURI("data:image/jpeg;base64," + strings.TrimRight(enc, "="))
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString(pngBytes)
	cases := map[string]struct {
		in   string
		want error
	}{
		"no separator":      {"data:image/png," + enc, ErrInvalidDataURI},
		"empty payload":     {"data:image/png;base64,", ErrInvalidDataURI},
		"not image":         {"data:text/plain;base64,aGVsbG8=", ErrInvalidDataURI},
		"bad base64":        {"data:image/png;base64,***", ErrInvalidDataURI},
		"no subtype":        {"data:image;base64,aGVsbG8=", ErrInvalidDataURI},
		"subtype traversal": {"data:image/x/../../a.png;base64," + enc, ErrInvalidDataURI},
		"subtype separator": {`data:image/png\x;base64,` + enc, ErrInvalidDataURI},
		"html payload": {
			"data:image/html;base64," + base64.StdEncoding.EncodeToString([]byte("<html><script>alert(1)</script></html>")),
			ErrNotImage,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDataURI(tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSniffImage(t *testing.T) {
	img, err := SniffImage(pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)

	_, err = SniffImage([]byte("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = SniffImage(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestUploadPath(t *testing.T) {
	p := UploadPath(DirCategoryIcons, "../My Icon!.PNG", "png")
	assert.True(t, strings.HasPrefix(p, DirCategoryIcons+"/"))
	assert.True(t, strings.HasSuffix(p, "_My_Icon_.png"), p)
	assert.NotContains(t, p, "..")

	assert.NotEqual(t, UploadPath(DirProfile, "a.png", "png"), UploadPath(DirProfile, "a.png", "png"))

	tp, err := ThumbnailPath(12, "gif")
	require.NoError(t, err)
	assert.Equal(t, "uploaded_images/thumbnails/12.gif", tp)

	pp, err := ProfilePath(5, "jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pp, "uploaded_images/profile/5_"), pp)
	assert.True(t, strings.HasSuffix(pp, ".jpeg"), pp)
}

func TestPaths_RejectUnsafeExt(t *testing.T) {
	for _, ext := range []string{"", "x/../../category_icons/victim.png", `png\x`, "..", "svg+xml"} {
		_, err := ThumbnailPath(1, ext)
		assert.ErrorIs(t, err, ErrUnsafeExt, ext)
		_, err = ProfilePath(1, ext)
		assert.ErrorIs(t, err, ErrUnsafeExt, ext)
	}
}

func TestOrphans(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media")
	require.NoError(t, store.Save("uploaded_images/thumbnails/1.png", pngBytes))
	require.NoError(t, store.Save("uploaded_images/thumbnails/2.png", pngBytes))
	require.NoError(t, os.WriteFile(filepath.Join(root, "unrelated.txt"), []byte("x"), 0o644))

	orphans, err := Orphans(root, map[string]struct{}{"uploaded_images/thumbnails/1.png": {}})
	require.NoError(t, err)
	assert.Equal(t, []string{"uploaded_images/thumbnails/2.png"}, orphans)

	orphans, err = Orphans(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}
