package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
)

// formImage reads the "image" multipart field. The returned close func must
// be called once the upload has been stored. When ok is false a 400 has
// already been written.
func formImage(c *gin.Context, maxBytes int64, missing string) (img services.Upload, closeFn func(), ok bool) {
	header, err := c.FormFile("image")
	if err != nil {
		message(c, http.StatusBadRequest, missing)
		c.Abort()
		return img, nil, false
	}

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		message(c, http.StatusBadRequest, "Unsupported file format")
		c.Abort()
		return img, nil, false
	}
	if maxBytes > 0 && header.Size > maxBytes {
		message(c, http.StatusBadRequest, fmt.Sprintf("File too large, limit is %d bytes", maxBytes))
		c.Abort()
		return img, nil, false
	}

	file, err := header.Open()
	if err != nil {
		message(c, http.StatusBadRequest, missing)
		c.Abort()
		return img, nil, false
	}
	return uploadOf(file, header), func() { _ = file.Close() }, true
}

func uploadOf(file multipart.File, header *multipart.FileHeader) services.Upload {
	return services.Upload{
		Body:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}
}
