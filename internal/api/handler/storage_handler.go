package handler

import (
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
	"github.com/norsu/hrportal/internal/infrastructure/storage"
)

// StorageHandler streams stored objects: resumes behind signed tokens and
// job images publicly.
type StorageHandler struct {
	objects ports.ObjectStorage
	signer  ports.URLSigner
}

func NewStorageHandler(objects ports.ObjectStorage, signer ports.URLSigner) *StorageHandler {
	return &StorageHandler{objects: objects, signer: signer}
}

// Signed streams the object a download token grants.
//
// @Summary      Signed download
// @Tags         storage
// @Param        token  query  string  true  "Signed download token"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/storage/signed [get]
func (h *StorageHandler) Signed(c echo.Context) error {
	p, err := h.signer.Verify(c.QueryParam("token"))
	if err != nil {
		return err
	}
	obj, err := h.objects.Open(c.Request().Context(), p)
	if err != nil {
		return err
	}
	defer obj.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": path.Base(p)}))
	header.Set(echo.HeaderCacheControl, "private, no-store")
	return stream(c, obj)
}

// Image serves a job image kept in object storage.
//
// @Summary      Job image
// @Tags         storage
// @Param        path  path  string  true  "Image path"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /api/storage/images/{path} [get]
func (h *StorageHandler) Image(c echo.Context) error {
	p, ok := storage.ImagePath(c.Param("*"))
	if !ok {
		return domain.ErrObjectNotFound
	}
	obj, err := h.objects.Open(c.Request().Context(), p)
	if err != nil {
		return err
	}
	defer obj.Close()

	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return stream(c, obj)
}

func stream(c echo.Context, obj *ports.Object) error {
	if obj.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, obj)
}
