package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/streambox/internal/constants"
	"github.com/amaumene/streambox/internal/services"
)

func (h *Handler) handleUpload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(constants.MaxUploadMemory); err != nil {
		fail(c, http.StatusBadRequest, "expected a multipart form")
		return
	}

	year, _, err := optionalInt(c, "year")
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	match, hasMatch, err := optionalInt(c, "match")
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	videoHeader, err := c.FormFile("video")
	if err != nil {
		fail(c, http.StatusBadRequest, "video file is required")
		return
	}
	videoFile, err := videoHeader.Open()
	if err != nil {
		h.failWith(c, err)
		return
	}
	defer videoFile.Close()

	upload := services.VideoUpload{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Year:        year,
		Rating:      c.PostForm("rating"),
		Video:       services.UploadFile{Name: videoHeader.Filename, Content: videoFile},
	}
	if hasMatch {
		upload.Match = &match
	}

	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		thumbFile, err := thumbHeader.Open()
		if err != nil {
			h.failWith(c, err)
			return
		}
		defer thumbFile.Close()
		upload.Thumbnail = &services.UploadFile{Name: thumbHeader.Filename, Content: thumbFile}
	} else if !errors.Is(err, http.ErrMissingFile) {
		fail(c, http.StatusBadRequest, "unreadable thumbnail")
		return
	}

	video, err := h.services.Videos.Upload(upload)
	if err != nil {
		h.failWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Video uploaded successfully",
		"video_id": video.ID,
	})
}

func (h *Handler) handleListVideos(c *gin.Context) {
	videos, err := h.services.Videos.List()
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, videos, nil)
}

func (h *Handler) handleGetVideo(c *gin.Context) {
	video, err := h.services.Videos.Get(c.Param("id"))
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, video, nil)
}

func (h *Handler) handleDeleteVideo(c *gin.Context) {
	if err := h.services.Videos.Delete(c.Param("id")); err != nil {
		h.failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Video deleted successfully"})
}

func (h *Handler) handleStreamVideo(c *gin.Context) {
	h.serveFile(c, c.Param("filename"))
}

func (h *Handler) handleThumbnail(c *gin.Context) {
	h.serveFile(c, c.Param("filename"))
}

// serveFile streams a stored file with range support.
func (h *Handler) serveFile(c *gin.Context, name string) {
	f, info, err := h.services.Videos.Open(name)
	if err != nil {
		h.failWith(c, err)
		return
	}
	defer f.Close()

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// optionalInt parses an integer form field and reports whether it was sent.
// An absent or blank field is 0, false.
func optionalInt(c *gin.Context, field string) (int, bool, error) {
	raw, ok := c.GetPostForm(field)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer", field)
	}
	return v, true, nil
}
