package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cehbz/torrentname"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/amaumene/streambox/internal/constants"
	"github.com/amaumene/streambox/internal/database"
	apperrors "github.com/amaumene/streambox/internal/errors"
	"github.com/amaumene/streambox/internal/models"
	"github.com/amaumene/streambox/internal/storage"
	"github.com/amaumene/streambox/pkg/logger"
)

const (
	streamRoute    = "/api/custom-videos/stream/"
	thumbnailRoute = "/api/custom-videos/thumbnail/"
)

// UploadFile is one file part of an upload.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// VideoUpload is the metadata and content of a new custom video. Empty strings
// take the custom-video defaults, a nil Match takes DefaultCustomMatch and a
// zero Year is inferred from the file name.
type VideoUpload struct {
	Title       string
	Description string
	Category    string
	Year        int
	Rating      string
	Match       *int
	Video       UploadFile
	Thumbnail   *UploadFile
}

// Videos manages uploaded videos: metadata in the database, content on disk.
type Videos struct {
	db     database.Database
	files  *storage.Files
	logger logger.Logger
}

func NewVideos(db database.Database, files *storage.Files, log logger.Logger) *Videos {
	if log == nil {
		log = logger.New()
	}
	return &Videos{db: db, files: files, logger: log}
}

// Upload validates and stores a video and its optional thumbnail.
func (v *Videos) Upload(u VideoUpload) (*models.CustomVideo, error) {
	title := strings.TrimSpace(u.Title)
	if title == "" {
		return nil, apperrors.NewInvalidUploadError("title is required", nil)
	}
	if u.Video.Content == nil {
		return nil, apperrors.NewInvalidUploadError("video file is required", nil)
	}

	id := uuid.New().String()
	video := &models.CustomVideo{
		ID:          id,
		Title:       title,
		Description: u.Description,
		Category:    withDefault(strings.TrimSpace(u.Category), constants.DefaultCustomCategory),
		Year:        u.Year,
		Rating:      withDefault(strings.TrimSpace(u.Rating), constants.DefaultCustomRating),
		Match:       constants.DefaultCustomMatch,
		CreatedAt:   time.Now().UTC(),
	}
	if video.Year == 0 {
		video.Year = yearFromFileName(u.Video.Name)
	}
	if u.Match != nil {
		video.Match = *u.Match
	}
	if video.Match < 0 || video.Match > 100 {
		return nil, apperrors.NewInvalidUploadError(fmt.Sprintf("match must be within 0..100, got %d", video.Match), nil)
	}

	videoName, err := v.store(id, "", u.Video, "video/")
	if err != nil {
		return nil, err
	}
	video.VideoPath = videoName

	if u.Thumbnail != nil && u.Thumbnail.Content != nil {
		thumbName, err := v.store(id, "_thumb", *u.Thumbnail, "image/")
		if err != nil {
			v.removeFiles(video)
			return nil, err
		}
		video.ThumbnailPath = thumbName
	}

	if err := v.db.InsertVideo(video); err != nil {
		v.removeFiles(video)
		return nil, fmt.Errorf("failed to save video metadata: %w", err)
	}

	v.logger.Infof("[Videos] uploaded %s (%q)", id, title)
	return video, nil
}

// store sniffs the upload, requires a content type under mimePrefix and
// writes it as <id><suffix><ext>.
func (v *Videos) store(id, suffix string, f UploadFile, mimePrefix string) (string, error) {
	mime, content, err := storage.Sniff(f.Content)
	if err != nil {
		return "", apperrors.NewInvalidUploadError("unreadable upload", err)
	}
	if !strings.HasPrefix(mime.String(), mimePrefix) {
		return "", apperrors.NewInvalidUploadError(
			fmt.Sprintf("%s: expected %s* content, got %s", storage.BaseName(f.Name), mimePrefix, mime.String()), nil)
	}

	ext := strings.ToLower(path.Ext(storage.BaseName(f.Name)))
	if ext == "" || !storage.ValidName("x"+ext) {
		ext = mime.Extension()
	}

	name := id + suffix + ext
	if _, err := v.files.Save(name, content); err != nil {
		return "", err
	}
	return name, nil
}

// List returns the stored videos in their front-end shape.
func (v *Videos) List() ([]models.CustomVideoView, error) {
	videos, err := v.db.ListVideos(constants.MaxCustomVideos)
	if err != nil {
		return nil, err
	}

	views := make([]models.CustomVideoView, 0, len(videos))
	for i := range videos {
		views = append(views, toView(&videos[i]))
	}
	return views, nil
}

// Get returns one video with its category as the only genre.
func (v *Videos) Get(id string) (*models.CustomVideoView, error) {
	video, err := v.db.GetVideo(id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, apperrors.NewNotFoundError("video " + id)
	}

	view := toView(video)
	view.Genres = []string{view.Category}
	return &view, nil
}

// Delete removes the files of a video, then its record.
func (v *Videos) Delete(id string) error {
	video, err := v.db.GetVideo(id)
	if err != nil {
		return err
	}
	if video == nil {
		return apperrors.NewNotFoundError("video " + id)
	}

	v.removeFiles(video)
	if _, err := v.db.DeleteVideo(id); err != nil {
		return err
	}
	v.logger.Infof("[Videos] deleted %s", id)
	return nil
}

// Open returns a stored file for streaming.
func (v *Videos) Open(name string) (afero.File, os.FileInfo, error) {
	if name == "" || name == "None" {
		return nil, nil, apperrors.NewNotFoundError("file")
	}
	f, info, err := v.files.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrInvalidName) {
			return nil, nil, apperrors.NewNotFoundError("file " + name)
		}
		return nil, nil, err
	}
	return f, info, nil
}

func (v *Videos) removeFiles(video *models.CustomVideo) {
	for _, name := range []string{video.VideoPath, video.ThumbnailPath} {
		if name == "" {
			continue
		}
		if err := v.files.Remove(name); err != nil {
			v.logger.Warnf("[Videos] failed to remove %s: %v", name, err)
		}
	}
}

func toView(video *models.CustomVideo) models.CustomVideoView {
	view := models.CustomVideoView{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		Category:    withDefault(video.Category, constants.DefaultCustomCategory),
		Year:        video.Year,
		Rating:      withDefault(video.Rating, constants.DefaultCustomRating),
		Match:       video.Match,
		MediaType:   constants.MediaTypeCustom,
		VideoURL:    streamRoute + video.VideoPath,
	}
	if video.Year == 0 {
		view.Year = constants.DefaultYear
	}
	if video.ThumbnailPath != "" {
		thumb := thumbnailRoute + video.ThumbnailPath
		view.Poster = &thumb
		view.Backdrop = &thumb
	}
	return view
}

// yearFromFileName reads a release year out of names like
// "Some.Movie.1999.1080p.mkv", falling back to the default year.
func yearFromFileName(name string) int {
	parsed := torrentname.Parse(storage.BaseName(name))
	if parsed != nil && parsed.Year >= 1000 && parsed.Year <= 9999 {
		return parsed.Year
	}
	return constants.DefaultYear
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
