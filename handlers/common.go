package handlers

import (
	"errors"
	"net/http"
	"strings"

	"friendzone/apperr"
	"friendzone/media"
	"friendzone/middleware"
	"friendzone/response"
	"friendzone/validation"

	"github.com/gin-gonic/gin"
)

func callerID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

func bindError(c *gin.Context, err error) {
	details := validation.ToDetails(err)
	response.Error(c, apperr.Invalid(validation.Summary(details), details))
}

// bindBody binds JSON, form or multipart bodies. An empty body leaves obj
// untouched.
func bindBody(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 && len(c.Request.TransferEncoding) == 0 {
		return nil
	}
	return c.ShouldBind(obj)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// formImage reads an optional image from a multipart field.
func formImage(c *gin.Context, field string) (*media.Image, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("Could not read uploaded file")
	}
	return media.FromFileHeader(fh)
}
