package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/service"
)

const maxUploadSize = 10 << 20

// UploadMedia 处理图片上传请求
func (a *API) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("media")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No image uploaded")
		return
	}
	if file.Size > maxUploadSize {
		respondError(c, http.StatusBadRequest, "Image is larger than 10 MB")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read the upload")
		return
	}
	defer src.Close()

	saved, err := a.media.Save(src)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedImage) {
			respondError(c, http.StatusBadRequest, "Only PNG, JPEG, GIF and WebP images are accepted")
			return
		}
		logger.Errorf("[upload] save %s: %v", file.Filename, err)
		respondError(c, http.StatusInternalServerError, "Could not store the image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": saved, "url": saved.URL})
}

// ListMedia returns stored uploads.
func (a *API) ListMedia(c *gin.Context) {
	files, err := a.media.List()
	if err != nil {
		logger.Errorf("[upload] list: %v", err)
		respondError(c, http.StatusInternalServerError, "Could not list images")
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}
