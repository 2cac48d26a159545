package media

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"storefront/backend/internal/apperr"
	"storefront/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "https://proj.supabase.test/storage/v1/object/public/game-media"

func newTestManager(t *testing.T) (*Manager, Store, *GormLedger) {
	t.Helper()
	store, err := Open(context.Background(), Config{Driver: "mem"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ledger := NewGormLedger(testutil.NewDB(t))
	m := NewManager(store, ledger, ManagerOptions{Bucket: "game-media", PublicBaseURL: testBase})
	m.now = func() time.Time { return time.UnixMilli(1700000000000) }
	m.nonce = func() string { return "n0nce123" }
	return m, store, ledger
}

func TestUploadStoresObjectAndReturnsPublicURL(t *testing.T) {
	m, store, ledger := newTestManager(t)
	ctx := context.Background()

	obj, err := m.Upload(ctx, File{Name: "cover art.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)

	assert.Equal(t, "1700000000000_n0nce123_cover_art.png", obj.Key)
	assert.Equal(t, testBase+"/1700000000000_n0nce123_cover_art.png", obj.URL)

	ok, err := store.Exists(ctx, obj.Key)
	require.NoError(t, err)
	assert.True(t, ok)

	pending, err := ledger.Expired(ctx, time.UnixMilli(1700000000001))
	require.NoError(t, err)
	assert.Equal(t, []string{obj.Key}, pending)

	require.NoError(t, m.Commit(ctx, obj.Key))
	pending, err = ledger.Expired(ctx, time.UnixMilli(1700000000001))
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUploadWithoutBodyIsRejected(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Upload(context.Background(), File{Name: "x.png"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestKeyFromURL(t *testing.T) {
	m, _, _ := newTestManager(t)

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "public url", raw: testBase + "/167_image.png", want: "167_image.png"},
		{name: "other host same layout", raw: "https://cdn.test/x/game-media/a/b.png", want: "a/b.png"},
		{name: "relative", raw: "/storage/v1/object/public/game-media/1_a.png", want: "1_a.png"},
		{name: "missing bucket segment", raw: "https://cdn.test/other/1_a.png", wantErr: true},
		{name: "bucket without key", raw: "https://cdn.test/game-media/", wantErr: true},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "unparsable", raw: "http://[::1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.KeyFromURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeleteByURLRemovesObject(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()
	obj, err := m.Upload(ctx, File{Name: "a.png", Body: strings.NewReader("a")})
	require.NoError(t, err)

	require.NoError(t, m.DeleteByURL(ctx, obj.URL))

	ok, err := store.Exists(ctx, obj.Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteByURLRejectsForeignURL(t *testing.T) {
	m, _, _ := newTestManager(t)
	err := m.DeleteByURL(context.Background(), "https://example.test/images/a.png")
	assert.ErrorIs(t, err, apperr.ErrInvalidURL)
}

func TestSameNameUploadsGetDistinctKeys(t *testing.T) {
	store, err := Open(context.Background(), Config{Driver: "mem"})
	require.NoError(t, err)
	defer store.Close()
	m := NewManager(store, nil, ManagerOptions{Bucket: "game-media", PublicBaseURL: testBase})
	m.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	first, err := m.Upload(ctx, File{Name: "image.png", Body: strings.NewReader("first")})
	require.NoError(t, err)
	second, err := m.Upload(ctx, File{Name: "image.png", Body: strings.NewReader("second")})
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.NotEqual(t, first.URL, second.URL)
	assert.True(t, strings.HasSuffix(first.Key, "_image.png"))
}

func TestDefaultPublicBaseURLIsAbsolute(t *testing.T) {
	store, err := Open(context.Background(), Config{Driver: "mem"})
	require.NoError(t, err)
	defer store.Close()

	m := NewManager(store, nil, ManagerOptions{})
	u, err := url.Parse(m.PublicURL("1_a.png"))
	require.NoError(t, err)
	assert.True(t, u.IsAbs())
	assert.Equal(t, "http://localhost/storage/v1/object/public/game-media/1_a.png", u.String())
}

func TestDeleteMissingObjectSucceeds(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.NoError(t, m.DeleteKey(context.Background(), "nope.png"))

	obj, err := m.Upload(context.Background(), File{Name: "a.png", Body: strings.NewReader("a")})
	require.NoError(t, err)
	require.NoError(t, m.DeleteByURL(context.Background(), obj.URL))
	assert.NoError(t, m.DeleteByURL(context.Background(), obj.URL), "second delete of the same URL")
}

type failingStore struct{ Store }

func (failingStore) Delete(context.Context, string) error { return errors.New("connection reset") }

func TestDeleteStoreFailureIsBackendError(t *testing.T) {
	m, store, _ := newTestManager(t)
	m.store = failingStore{store}
	err := m.DeleteKey(context.Background(), "a.png")
	assert.ErrorIs(t, err, apperr.ErrBackend)
}

type brokenReader struct{ sent bool }

func (r *brokenReader) Read(p []byte) (int, error) {
	if r.sent {
		return 0, errors.New("client went away")
	}
	r.sent = true
	return copy(p, "partial"), nil
}

var _ io.Reader = (*brokenReader)(nil)

func TestFailedPutLeavesNoPartialObject(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Config{Driver: "mem"})
	require.NoError(t, err)
	defer store.Close()

	err = store.Put(ctx, "1_a.png", &brokenReader{}, 0, "image/png")
	require.Error(t, err)

	ok, err := store.Exists(ctx, "1_a.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnforceCap(t *testing.T) {
	for existing := 0; existing <= 6; existing++ {
		for adds := 0; adds <= 6; adds++ {
			assert.Equal(t, existing+adds <= 5, EnforceCap(existing, adds, 5), "existing=%d adds=%d", existing, adds)
		}
	}
	assert.False(t, EnforceCap(-1, 1, 5))

	m, _, _ := newTestManager(t)
	assert.Equal(t, 5, m.MaxCount())
	assert.True(t, m.EnforceCap(3, 2))
	assert.False(t, m.EnforceCap(3, 3))
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "a/b.png", sanitizeKey("/../a/./b.png"))
	assert.Equal(t, "x.png", sanitizeKey("x.png"))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(Config{}))
	assert.Error(t, Validate(Config{Driver: "nope"}))
	assert.Error(t, Validate(Config{Driver: "s3"}))
	assert.Error(t, Validate(Config{Driver: "oss", Bucket: "b"}))
	assert.Error(t, Validate(Config{Driver: "cos", Bucket: "b", AccessKey: "a", SecretKey: "s"}))
	assert.NoError(t, Validate(Config{Driver: "mem"}))
	assert.NoError(t, Validate(Config{Driver: "file", BaseDir: t.TempDir()}))
}

func TestBuildS3URL(t *testing.T) {
	u := buildS3URL(Config{Bucket: "game-media", Region: "us-east-1", Endpoint: "https://proj.supabase.test/storage/v1/s3", ForcePathStyle: true})
	assert.True(t, strings.HasPrefix(u, "s3://game-media?"))
	assert.Contains(t, u, "region=us-east-1")
	assert.Contains(t, u, "s3ForcePathStyle=true")
}

func TestFileDriverRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Config{Driver: "file", BaseDir: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "1_a.txt", strings.NewReader("hello"), 5, "text/plain"))
	ok, err := store.Exists(ctx, "1_a.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, store.Delete(ctx, "1_a.txt"))
}
