package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/backend/internal/apperr"
	"storefront/backend/internal/auth"
	"storefront/backend/internal/listing"
	"storefront/backend/internal/media"
	"storefront/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// region --- DTOs ---

type ListingInput struct {
	Name        string   `json:"name" example:"Alpha"`
	Price       *float64 `json:"price" example:"500"`
	Description *string  `json:"description"`
	URL         *string  `json:"url"`
	MediaURLs   []string `json:"media_urls"` // URLs returned by POST /media
}

type ListingPatchInput struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	MediaURLs   *[]string `json:"media_urls"` // replaces the gallery when present
}

type FileURLInput struct {
	FileURL string `json:"fileUrl"`
}

type ListingResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	MediaURLs   []string  `json:"media_urls"`
	DeveloperID *string   `json:"developer_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newListingResponse(l *models.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Name:        l.Name,
		Price:       l.Price,
		Description: l.Description,
		URL:         l.URL,
		MediaURLs:   l.MediaURLs(),
		DeveloperID: l.DeveloperID,
		CreatedAt:   l.CreatedAt,
	}
}

// endregion

// region --- Listing Handlers ---

// GetListings godoc
// @Summary      List games
// @Description  Returns every listing ordered by id.
// @Tags         listings
// @Produce      json
// @Success      200 {array}  ListingResponse
// @Failure      500 {object} ErrorResponse "Failed to fetch games"
// @Router       /listings [get]
func (h *Handler) GetListings(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch games")
		return
	}

	response := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		response = append(response, newListingResponse(&listings[i]))
	}
	c.JSON(http.StatusOK, response)
}

// GetListingByID godoc
// @Summary      Get a single game by ID
// @Tags         listings
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} ListingResponse
// @Failure      400 {object} ErrorResponse "Invalid ID"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      500 {object} ErrorResponse "Failed to fetch game"
// @Router       /listings/{id} [get]
func (h *Handler) GetListingByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	l, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch game")
		return
	}
	c.JSON(http.StatusOK, newListingResponse(l))
}

// CreateListing godoc
// @Summary      Create a game
// @Description  Accepts JSON, or multipart/form-data with up to five "media" files.
// @Tags         listings
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        input body ListingInput true "Game Info"
// @Success      201 {object} ListingResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse "Failed to create game"
// @Router       /listings [post]
func (h *Handler) CreateListing(c *gin.Context) {
	ctx := c.Request.Context()
	var developerID *string
	if id, ok := auth.CreatorID(c); ok {
		developerID = &id
	}

	if isMultipart(c) {
		fields, files, closeFiles, err := readListingForm(c, nil)
		if err != nil {
			respondError(c, err, "Failed to create game")
			return
		}
		defer closeFiles()
		fields.DeveloperID = developerID

		l, err := h.listings.CreateOrUpdateListing(ctx, nil, fields, files)
		if err != nil {
			respondError(c, err, "Failed to create game")
			return
		}
		c.JSON(http.StatusCreated, newListingResponse(l))
		return
	}

	var input ListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.listings.Create(ctx, listing.Fields{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		URL:         input.URL,
		MediaURLs:   input.MediaURLs,
		DeveloperID: developerID,
	})
	if err != nil {
		respondError(c, err, "Failed to create game")
		return
	}
	c.JSON(http.StatusCreated, newListingResponse(l))
}

// UpdateListing godoc
// @Summary      Update a game
// @Description  JSON bodies merge only the supplied fields. Multipart bodies resubmit the form and append new "media" files.
// @Tags         listings
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int               true "Game ID"
// @Param        input body ListingPatchInput true "Fields to change"
// @Success      200 {object} ListingResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse "Failed to update game"
// @Router       /listings/{id} [patch]
func (h *Handler) UpdateListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if isMultipart(c) {
		existing, err := h.listings.Get(ctx, id)
		if err != nil {
			respondUpdateError(c, err)
			return
		}
		fields, files, closeFiles, err := readListingForm(c, existing)
		if err != nil {
			respondUpdateError(c, err)
			return
		}
		defer closeFiles()

		l, err := h.listings.CreateOrUpdateListing(ctx, existing, fields, files)
		if err != nil {
			respondUpdateError(c, err)
			return
		}
		c.JSON(http.StatusOK, newListingResponse(l))
		return
	}

	var input ListingPatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.listings.Update(ctx, id, listing.Patch{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		URL:         input.URL,
		MediaURLs:   input.MediaURLs,
	})
	if err != nil {
		respondUpdateError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListingResponse(l))
}

// DeleteListing godoc
// @Summary      Delete a game
// @Description  Deletes the row. Media objects are left in the bucket.
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted successfully"}"
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse "Failed to delete game"
// @Router       /listings/{id} [delete]
func (h *Handler) DeleteListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.listings.DeleteListing(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete game")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game deleted successfully"})
}

// RemoveListingMedia godoc
// @Summary      Remove one media file from a game
// @Description  Deletes the object from storage, then saves the gallery without it.
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Game ID"
// @Param        input body FileURLInput true "Media URL"
// @Success      200 {object} ListingResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      500 {object} ErrorResponse "Failed to delete file"
// @Router       /listings/{id}/media/remove [post]
func (h *Handler) RemoveListingMedia(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input FileURLInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.FileURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File URL is required"})
		return
	}
	ctx := c.Request.Context()

	l, err := h.listings.Get(ctx, id)
	if err != nil {
		respondError(c, err, "Failed to fetch game")
		return
	}
	trimmed, err := h.listings.RemoveMedia(ctx, l, input.FileURL)
	if err != nil {
		respondError(c, err, "Failed to delete file")
		return
	}
	saved, err := h.listings.SaveMedia(ctx, trimmed)
	if err != nil {
		respondError(c, err, "Failed to update game")
		return
	}
	c.JSON(http.StatusOK, newListingResponse(saved))
}

// endregion

// respondUpdateError reports a missing id on update as a server error, the
// same as any other failed update.
func respondUpdateError(c *gin.Context, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		logrus.WithError(err).WithField("id", c.Param("id")).Warn("update of missing game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update game"})
		return
	}
	respondError(c, err, "Failed to update game")
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readListingForm reads the listing form fields and the "media" files.
// Fields absent from the form fall back to existing, when given.
// The returned func closes the opened files.
func readListingForm(c *gin.Context, existing *models.Listing) (listing.Fields, []media.File, func(), error) {
	noop := func() {}
	form, err := c.MultipartForm()
	if err != nil {
		return listing.Fields{}, nil, noop, apperr.Validation("invalid multipart form: %v", err)
	}

	var fields listing.Fields
	if existing != nil {
		price := existing.Price
		fields = listing.Fields{
			Name:        existing.Name,
			Price:       &price,
			Description: existing.Description,
			URL:         existing.URL,
			DeveloperID: existing.DeveloperID,
		}
	}
	if v, ok := formValue(form, "name"); ok {
		fields.Name = v
	}
	if v, ok := formValue(form, "price"); ok {
		p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return listing.Fields{}, nil, noop, apperr.Validation("price must be a number")
		}
		fields.Price = &p
	}
	if v, ok := formValue(form, "description"); ok {
		fields.Description = &v
	}
	if v, ok := formValue(form, "url"); ok {
		fields.URL = &v
	}

	headers := form.File["media"]
	files := make([]media.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return listing.Fields{}, nil, noop, apperr.Validation("unreadable file %q", fh.Filename)
		}
		opened = append(opened, f)
		files = append(files, media.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return fields, files, closeAll, nil
}

func formValue(form *multipart.Form, key string) (string, bool) {
	vs, ok := form.Value[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
