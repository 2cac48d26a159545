package handler

import (
	"errors"
	"net/http"

	"storefront/backend/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// respondError translates err into a status and message. fallback is the
// message shown for backend failures, whose details are only logged.
func respondError(c *gin.Context, err error, fallback string) {
	status, msg := http.StatusInternalServerError, fallback
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status, msg = http.StatusBadRequest, apperr.Message(err, "Invalid request")
	case errors.Is(err, apperr.ErrInvalidURL):
		status, msg = http.StatusBadRequest, "Invalid file URL"
	case errors.Is(err, apperr.ErrNotFound):
		status, msg = http.StatusNotFound, apperr.Message(err, "Not found")
	case errors.Is(err, apperr.ErrUpload):
		msg = "Failed to upload media"
	}

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(msg)
	}
	c.JSON(status, gin.H{"error": msg})
}
