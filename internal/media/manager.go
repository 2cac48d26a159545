package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"storefront/backend/internal/apperr"
	"storefront/backend/internal/metrics"
	"storefront/backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// File is an incoming upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Bucket string
	// PublicBaseURL is the prefix public object URLs are built from. It must end
	// with the bucket segment, e.g. https://x.supabase.co/storage/v1/object/public/game-media.
	// Empty means DefaultPublicBaseURL(DefaultOrigin, Bucket).
	PublicBaseURL string
	MaxCount      int
}

// Manager uploads and deletes listing media.
type Manager struct {
	store      Store
	ledger     Ledger
	bucket     string
	publicBase string
	maxCount   int
	now        func() time.Time
	nonce      func() string
}

// DefaultOrigin is used when no public origin is configured.
const DefaultOrigin = "http://localhost"

// PublicObjectPath is the hosted-storage path prefix of public objects.
const PublicObjectPath = "/storage/v1/object/public/"

// DefaultPublicBaseURL follows the hosted-storage public object layout under origin.
func DefaultPublicBaseURL(origin, bucket string) string {
	return strings.TrimSuffix(origin, "/") + PublicObjectPath + bucket
}

// NewManager creates a Manager. ledger may be nil, in which case uploads are not tracked.
func NewManager(store Store, ledger Ledger, opts ManagerOptions) *Manager {
	if opts.Bucket == "" {
		opts.Bucket = "game-media"
	}
	if opts.PublicBaseURL == "" {
		opts.PublicBaseURL = DefaultPublicBaseURL(DefaultOrigin, opts.Bucket)
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = models.MaxMediaPerListing
	}
	return &Manager{
		store:      store,
		ledger:     ledger,
		bucket:     opts.Bucket,
		publicBase: strings.TrimSuffix(opts.PublicBaseURL, "/"),
		maxCount:   opts.MaxCount,
		now:        time.Now,
		nonce:      func() string { return uuid.NewString()[:8] },
	}
}

// MaxCount is the per-listing media cap.
func (m *Manager) MaxCount() int { return m.maxCount }

// PublicBaseURL is the prefix of every URL the manager hands out.
func (m *Manager) PublicBaseURL() string { return m.publicBase }

// EnforceCap reports whether adds more media may join current existing ones.
func (m *Manager) EnforceCap(current, adds int) bool {
	return EnforceCap(current, adds, m.maxCount)
}

// EnforceCap accepts iff current+adds does not exceed limit. Nothing is truncated.
func EnforceCap(current, adds, limit int) bool {
	if current < 0 || adds < 0 {
		return false
	}
	return current+adds <= limit
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey derives the storage key from the upload time, a random nonce and
// the original name. Same-named files uploaded together get distinct keys.
func (m *Manager) objectKey(name string) string {
	name = unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%d_%s_%s", m.now().UnixMilli(), m.nonce(), name)
}

// PublicURL returns the public URL of key.
func (m *Manager) PublicURL(key string) string {
	return m.publicBase + "/" + sanitizeKey(key)
}

// KeyFromURL extracts the storage key by splitting the URL path on the bucket segment.
func (m *Manager) KeyFromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.InvalidURL(raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", apperr.InvalidURL(raw)
	}
	seg := "/" + m.bucket + "/"
	idx := strings.Index(u.Path, seg)
	if idx < 0 {
		return "", apperr.InvalidURL(raw)
	}
	key := sanitizeKey(u.Path[idx+len(seg):])
	if key == "" {
		return "", apperr.InvalidURL(raw)
	}
	return key, nil
}

// Upload stores f and returns its key and public URL. The key stays in the
// pending ledger until Commit is called for it.
func (m *Manager) Upload(ctx context.Context, f File) (models.MediaObject, error) {
	if f.Body == nil {
		return models.MediaObject{}, apperr.Validation("file body is empty")
	}
	key := m.objectKey(f.Name)
	log := logrus.WithFields(logrus.Fields{"key": key, "bucket": m.bucket})

	if m.ledger != nil {
		if err := m.ledger.Track(ctx, key, m.now()); err != nil {
			metrics.RecordMediaOperation("upload", "error")
			return models.MediaObject{}, apperr.Upload(fmt.Errorf("track pending upload: %w", err))
		}
	}

	if err := m.store.Put(ctx, key, f.Body, f.Size, f.ContentType); err != nil {
		if m.ledger != nil {
			if rerr := m.ledger.Release(ctx, key); rerr != nil {
				log.WithError(rerr).Warn("failed to release pending upload")
			}
		}
		metrics.RecordMediaOperation("upload", "error")
		return models.MediaObject{}, apperr.Upload(err)
	}

	metrics.RecordMediaOperation("upload", "ok")
	log.Debug("media uploaded")
	return models.MediaObject{Key: key, URL: m.PublicURL(key)}, nil
}

// Commit marks keys as referenced by a persisted listing.
func (m *Manager) Commit(ctx context.Context, keys ...string) error {
	if m.ledger == nil || len(keys) == 0 {
		return nil
	}
	return m.ledger.Release(ctx, keys...)
}

// DeleteByURL removes the object a public URL points at.
func (m *Manager) DeleteByURL(ctx context.Context, raw string) error {
	key, err := m.KeyFromURL(raw)
	if err != nil {
		return err
	}
	return m.DeleteKey(ctx, key)
}

// DeleteKey removes the object stored under key. Deleting an object that is
// already gone succeeds.
func (m *Manager) DeleteKey(ctx context.Context, key string) error {
	if err := m.store.Delete(ctx, key); err != nil {
		metrics.RecordMediaOperation("delete", "error")
		return apperr.Backend("delete media", err)
	}
	if m.ledger != nil {
		if err := m.ledger.Release(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("failed to release pending upload")
		}
	}
	metrics.RecordMediaOperation("delete", "ok")
	return nil
}
