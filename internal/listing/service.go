// Package listing orchestrates the listing repository and the media manager.
package listing

import (
	"context"
	"math"
	"strings"

	"storefront/backend/internal/apperr"
	"storefront/backend/internal/hub"
	"storefront/backend/internal/media"
	"storefront/backend/internal/models"

	"github.com/sirupsen/logrus"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	List(ctx context.Context) ([]models.Listing, error)
	Get(ctx context.Context, id uint) (*models.Listing, error)
	Insert(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, id uint, patch models.ListingPatch) (*models.Listing, error)
	Delete(ctx context.Context, id uint) error
}

// MediaManager is the object-storage surface the service needs.
type MediaManager interface {
	Upload(ctx context.Context, f media.File) (models.MediaObject, error)
	DeleteByURL(ctx context.Context, raw string) error
	DeleteKey(ctx context.Context, key string) error
	KeyFromURL(raw string) (string, error)
	EnforceCap(current, adds int) bool
	MaxCount() int
	Commit(ctx context.Context, keys ...string) error
}

// Publisher receives change events after successful mutations.
type Publisher interface {
	Broadcast(topic string, event hub.Event)
}

// Event types published on hub.TopicListings.
const (
	EventCreated = "listing.created"
	EventUpdated = "listing.updated"
	EventDeleted = "listing.deleted"
)

// Fields are the form fields of a create or full-form update.
type Fields struct {
	Name        string
	Price       *float64
	Description *string
	URL         *string
	// MediaURLs lists already-uploaded media to attach on create.
	MediaURLs   []string
	DeveloperID *string
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name        *string
	Price       *float64
	Description *string
	URL         *string
	MediaURLs   *[]string
}

type Service struct {
	repo   Repository
	media  MediaManager
	events Publisher
}

// NewService wires the service. events may be nil.
func NewService(repo Repository, mm MediaManager, events Publisher) *Service {
	return &Service{repo: repo, media: mm, events: events}
}

func (s *Service) List(ctx context.Context) ([]models.Listing, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Listing, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a listing whose media, if any, was uploaded beforehand.
func (s *Service) Create(ctx context.Context, f Fields) (*models.Listing, error) {
	if err := validateFields(f); err != nil {
		return nil, err
	}
	if !s.media.EnforceCap(0, len(f.MediaURLs)) {
		return nil, s.capError()
	}

	gallery := make([]models.MediaObject, 0, len(f.MediaURLs))
	for _, u := range f.MediaURLs {
		gallery = append(gallery, s.resolve(u, nil))
	}

	l := newListing(f)
	l.SetMediaList(gallery)
	if err := s.repo.Insert(ctx, l); err != nil {
		return nil, err
	}
	s.commit(ctx, gallery)
	s.publish(EventCreated, l.ID)
	return l, nil
}

// Update merges p into listing id. A missing id fails with apperr.ErrNotFound.
func (s *Service) Update(ctx context.Context, id uint, p Patch) (*models.Listing, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apperr.Validation("name is required")
		}
		p.Name = &name
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return nil, err
		}
	}

	patch := models.ListingPatch{Name: p.Name, Price: p.Price, Description: p.Description, URL: p.URL}
	var gallery []models.MediaObject
	if p.MediaURLs != nil {
		if !s.media.EnforceCap(0, len(*p.MediaURLs)) {
			return nil, s.capError()
		}
		existing, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		known := existing.MediaList()
		gallery = make([]models.MediaObject, 0, len(*p.MediaURLs))
		for _, u := range *p.MediaURLs {
			gallery = append(gallery, s.resolve(u, known))
		}
		patch.Media = &gallery
	}

	l, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.commit(ctx, gallery)
	s.publish(EventUpdated, l.ID)
	return l, nil
}

// CreateOrUpdateListing uploads newFiles, appends them to the gallery and
// persists the listing: insert when existing is nil, update otherwise.
// The cap is checked before anything is uploaded. Upload and persist are not
// atomic; objects uploaded before a failed persist stay in the pending ledger
// until the sweeper removes them.
func (s *Service) CreateOrUpdateListing(ctx context.Context, existing *models.Listing, f Fields, newFiles []media.File) (*models.Listing, error) {
	if err := validateFields(f); err != nil {
		return nil, err
	}

	var gallery []models.MediaObject
	if existing != nil {
		gallery = existing.MediaList()
	}
	if !s.media.EnforceCap(len(gallery), len(newFiles)) {
		return nil, s.capError()
	}

	uploaded := make([]models.MediaObject, 0, len(newFiles))
	for _, file := range newFiles {
		obj, err := s.media.Upload(ctx, file)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, obj)
	}
	gallery = append(gallery, uploaded...)

	var (
		l   *models.Listing
		err error
	)
	if existing == nil {
		l = newListing(f)
		l.SetMediaList(gallery)
		err = s.repo.Insert(ctx, l)
	} else {
		name := strings.TrimSpace(f.Name)
		l, err = s.repo.Update(ctx, existing.ID, models.ListingPatch{
			Name:        &name,
			Price:       f.Price,
			Description: f.Description,
			URL:         f.URL,
			Media:       &gallery,
		})
	}
	if err != nil {
		logrus.WithError(err).WithField("uploaded", len(uploaded)).Warn("listing persist failed after media upload")
		return nil, err
	}

	s.commit(ctx, uploaded)
	if existing == nil {
		s.publish(EventCreated, l.ID)
	} else {
		s.publish(EventUpdated, l.ID)
	}
	return l, nil
}

// RemoveMedia deletes the object behind url, then drops url from a copy of
// listing. The caller persists the returned listing separately.
func (s *Service) RemoveMedia(ctx context.Context, listing *models.Listing, url string) (*models.Listing, error) {
	if strings.TrimSpace(url) == "" {
		return nil, apperr.Validation("file URL is required")
	}

	gallery := listing.MediaList()
	key := ""
	for _, m := range gallery {
		if m.URL == url {
			key = m.Key
			break
		}
	}

	var err error
	if key != "" {
		err = s.media.DeleteKey(ctx, key)
	} else {
		err = s.media.DeleteByURL(ctx, url)
	}
	if err != nil {
		return nil, err
	}

	kept := make([]models.MediaObject, 0, len(gallery))
	for _, m := range gallery {
		if m.URL != url {
			kept = append(kept, m)
		}
	}
	out := *listing
	out.SetMediaList(kept)
	return &out, nil
}

// SaveMedia persists the gallery of listing as-is.
func (s *Service) SaveMedia(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	gallery := listing.MediaList()
	l, err := s.repo.Update(ctx, listing.ID, models.ListingPatch{Media: &gallery})
	if err != nil {
		return nil, err
	}
	s.publish(EventUpdated, l.ID)
	return l, nil
}

// DeleteListing removes the row. Media objects it referenced are left in the bucket.
func (s *Service) DeleteListing(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(EventDeleted, id)
	return nil
}

func (s *Service) capError() error {
	return apperr.Validation("a listing can hold at most %d media files", s.media.MaxCount())
}

// resolve pairs url with its storage key, preferring keys already on record.
func (s *Service) resolve(url string, known []models.MediaObject) models.MediaObject {
	for _, m := range known {
		if m.URL == url {
			return m
		}
	}
	key, err := s.media.KeyFromURL(url)
	if err != nil {
		key = ""
	}
	return models.MediaObject{Key: key, URL: url}
}

func (s *Service) commit(ctx context.Context, gallery []models.MediaObject) {
	keys := make([]string, 0, len(gallery))
	for _, m := range gallery {
		if m.Key != "" {
			keys = append(keys, m.Key)
		}
	}
	if err := s.media.Commit(ctx, keys...); err != nil {
		logrus.WithError(err).Warn("failed to release pending uploads")
	}
}

func (s *Service) publish(eventType string, id uint) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(hub.TopicListings, hub.Event{Type: eventType, Payload: map[string]uint{"id": id}})
}

func newListing(f Fields) *models.Listing {
	return &models.Listing{
		Name:        strings.TrimSpace(f.Name),
		Price:       *f.Price,
		Description: f.Description,
		URL:         f.URL,
		DeveloperID: f.DeveloperID,
	}
}

func validateFields(f Fields) error {
	if strings.TrimSpace(f.Name) == "" {
		return apperr.Validation("name is required")
	}
	if f.Price == nil {
		return apperr.Validation("price is required")
	}
	return validatePrice(*f.Price)
}

func validatePrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return apperr.Validation("price must be a number")
	}
	if p < 0 {
		return apperr.Validation("price must not be negative")
	}
	return nil
}
