package services

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/streambox/internal/database"
	apperrors "github.com/amaumene/streambox/internal/errors"
	"github.com/amaumene/streambox/internal/storage"
	"github.com/amaumene/streambox/pkg/logger"
)

var (
	mp4Header = []byte("\x00\x00\x00\x1cftypisom\x00\x00\x02\x00isomiso2mp41")
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

func newTestVideos(t *testing.T) (*Videos, afero.Fs) {
	t.Helper()
	db, err := database.NewBolt(filepath.Join(t.TempDir(), "videos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fs := afero.NewMemMapFs()
	files, err := storage.NewFiles(fs, "/uploads")
	require.NoError(t, err)

	return NewVideos(db, files, logger.Discard()), fs
}

func mp4Upload(name string) UploadFile {
	return UploadFile{Name: name, Content: bytes.NewReader(append(append([]byte{}, mp4Header...), "frames"...))}
}

func TestVideosUploadDefaults(t *testing.T) {
	videos, fs := newTestVideos(t)

	video, err := videos.Upload(VideoUpload{
		Title:       "  Beach Day ",
		Description: "Waves",
		Video:       mp4Upload("beach.mp4"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, video.ID)
	assert.Equal(t, "Beach Day", video.Title)
	assert.Equal(t, "My Videos", video.Category)
	assert.Equal(t, 2024, video.Year)
	assert.Equal(t, "TV-14", video.Rating)
	assert.Equal(t, 90, video.Match)
	assert.Equal(t, video.ID+".mp4", video.VideoPath)
	assert.Empty(t, video.ThumbnailPath)

	exists, err := afero.Exists(fs, "/uploads/"+video.VideoPath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func intPtr(v int) *int { return &v }

func TestVideosUploadKeepsExplicitZeroMatch(t *testing.T) {
	videos, _ := newTestVideos(t)

	video, err := videos.Upload(VideoUpload{Title: "Unrated", Match: intPtr(0), Video: mp4Upload("a.mp4")})
	require.NoError(t, err)
	assert.Equal(t, 0, video.Match)

	stored, err := videos.Get(video.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Match)
}

func TestVideosUploadInfersYearFromFileName(t *testing.T) {
	videos, _ := newTestVideos(t)

	video, err := videos.Upload(VideoUpload{Title: "Old film", Video: mp4Upload("The.Matrix.1999.1080p.BluRay.x264.mp4")})
	require.NoError(t, err)
	assert.Equal(t, 1999, video.Year)

	explicit, err := videos.Upload(VideoUpload{Title: "Explicit", Year: 2010, Video: mp4Upload("The.Matrix.1999.mp4")})
	require.NoError(t, err)
	assert.Equal(t, 2010, explicit.Year)
}

func TestVideosUploadWithThumbnail(t *testing.T) {
	videos, fs := newTestVideos(t)

	video, err := videos.Upload(VideoUpload{
		Title:     "Trip",
		Category:  "Travel",
		Rating:    "PG-13",
		Match:     intPtr(75),
		Video:     mp4Upload("trip.mp4"),
		Thumbnail: &UploadFile{Name: "cover.png", Content: bytes.NewReader(pngHeader)},
	})
	require.NoError(t, err)
	assert.Equal(t, video.ID+"_thumb.png", video.ThumbnailPath)
	assert.Equal(t, "Travel", video.Category)
	assert.Equal(t, 75, video.Match)

	exists, err := afero.Exists(fs, "/uploads/"+video.ThumbnailPath)
	require.NoError(t, err)
	assert.True(t, exists)

	view, err := videos.Get(video.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Poster)
	assert.Equal(t, "/api/custom-videos/thumbnail/"+video.ThumbnailPath, *view.Poster)
	assert.Equal(t, view.Poster, view.Backdrop)
	assert.Equal(t, "/api/custom-videos/stream/"+video.VideoPath, view.VideoURL)
	assert.Equal(t, "custom", view.MediaType)
	assert.Equal(t, []string{"Travel"}, view.Genres)
}

func TestVideosUploadRejectsWrongContent(t *testing.T) {
	videos, fs := newTestVideos(t)

	_, err := videos.Upload(VideoUpload{Title: "Text", Video: UploadFile{Name: "notes.mp4", Content: strings.NewReader("plain text")}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUpload)

	_, err = videos.Upload(VideoUpload{
		Title:     "Bad thumb",
		Video:     mp4Upload("ok.mp4"),
		Thumbnail: &UploadFile{Name: "cover.png", Content: bytes.NewReader(mp4Header)},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUpload)

	entries, err := afero.ReadDir(fs, "/uploads")
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads leave no files behind")

	list, err := videos.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVideosUploadValidation(t *testing.T) {
	videos, _ := newTestVideos(t)

	_, err := videos.Upload(VideoUpload{Title: "  ", Video: mp4Upload("a.mp4")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUpload)

	_, err = videos.Upload(VideoUpload{Title: "No file"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUpload)

	_, err = videos.Upload(VideoUpload{Title: "Bad match", Match: intPtr(150), Video: mp4Upload("a.mp4")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUpload)
}

func TestVideosUploadSanitisesExtension(t *testing.T) {
	videos, _ := newTestVideos(t)

	video, err := videos.Upload(VideoUpload{Title: "Path", Video: mp4Upload("../../etc/clip.MP4")})
	require.NoError(t, err)
	assert.Equal(t, video.ID+".mp4", video.VideoPath)

	noExt, err := videos.Upload(VideoUpload{Title: "No ext", Video: mp4Upload("clip")})
	require.NoError(t, err)
	assert.Equal(t, noExt.ID+".mp4", noExt.VideoPath)
}

func TestVideosListAndDelete(t *testing.T) {
	videos, fs := newTestVideos(t)

	first, err := videos.Upload(VideoUpload{Title: "First", Video: mp4Upload("1.mp4")})
	require.NoError(t, err)
	second, err := videos.Upload(VideoUpload{
		Title:     "Second",
		Video:     mp4Upload("2.mp4"),
		Thumbnail: &UploadFile{Name: "2.png", Content: bytes.NewReader(pngHeader)},
	})
	require.NoError(t, err)

	list, err := videos.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].Genres)

	require.NoError(t, videos.Delete(second.ID))
	for _, name := range []string{second.VideoPath, second.ThumbnailPath} {
		exists, err := afero.Exists(fs, "/uploads/"+name)
		require.NoError(t, err)
		assert.False(t, exists, name)
	}

	_, err = videos.Get(second.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, videos.Delete(second.ID), apperrors.ErrNotFound)

	list, err = videos.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestVideosDeleteToleratesMissingFiles(t *testing.T) {
	videos, fs := newTestVideos(t)

	video, err := videos.Upload(VideoUpload{Title: "Vanishing", Video: mp4Upload("v.mp4")})
	require.NoError(t, err)
	require.NoError(t, fs.Remove("/uploads/"+video.VideoPath))

	assert.NoError(t, videos.Delete(video.ID))
}

func TestVideosOpen(t *testing.T) {
	videos, _ := newTestVideos(t)

	video, err := videos.Upload(VideoUpload{Title: "Stream", Video: mp4Upload("s.mp4")})
	require.NoError(t, err)

	f, info, err := videos.Open(video.VideoPath)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, mp4Header))
	assert.Equal(t, int64(len(data)), info.Size())

	for _, name := range []string{"", "None", "missing.mp4", "../videos.db"} {
		_, _, err := videos.Open(name)
		assert.ErrorIs(t, err, apperrors.ErrNotFound, name)
	}
}
