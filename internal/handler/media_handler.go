package handler

import (
	"net/http"
	"strings"

	"storefront/backend/internal/media"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type MediaResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// endregion

// DeleteMedia godoc
// @Summary      Delete a media file
// @Description  Removes the object a public media URL points at. Listings referencing it are not touched.
// @Tags         media
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body FileURLInput true "Media URL"
// @Success      200 {object} map[string]string "{"message": "File deleted successfully"}"
// @Failure      400 {object} ErrorResponse "File URL is required / Invalid file URL"
// @Failure      500 {object} ErrorResponse "Failed to delete file"
// @Router       /media/delete [post]
func (h *Handler) DeleteMedia(c *gin.Context) {
	var input FileURLInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.FileURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File URL is required"})
		return
	}

	if err := h.media.DeleteByURL(c.Request.Context(), input.FileURL); err != nil {
		respondError(c, err, "Failed to delete file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

// UploadMedia godoc
// @Summary      Upload a media file
// @Description  Stores one file and returns its public URL, to be attached with POST /listings. Unattached uploads are swept after MEDIA_ORPHAN_TTL.
// @Tags         media
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Media file"
// @Success      201 {object} MediaResponse
// @Failure      400 {object} ErrorResponse "No file provided"
// @Failure      500 {object} ErrorResponse "Failed to upload media"
// @Router       /media [post]
func (h *Handler) UploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer f.Close()

	obj, err := h.media.Upload(c.Request.Context(), media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		respondError(c, err, "Failed to upload media")
		return
	}
	c.JSON(http.StatusCreated, MediaResponse{Key: obj.Key, URL: obj.URL})
}
