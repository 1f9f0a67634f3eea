package models

import "time"

// CustomVideo is an uploaded video as persisted in the document store.
type CustomVideo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	VideoPath     string    `json:"video_path"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	Category      string    `json:"category"`
	Year          int       `json:"year"`
	Rating        string    `json:"rating"`
	Match         int       `json:"match"`
	CreatedAt     time.Time `json:"created_at"`
}

// CustomVideoView is the front-end shape of a custom video.
type CustomVideoView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Poster      *string  `json:"poster"`
	Backdrop    *string  `json:"backdrop"`
	Category    string   `json:"category"`
	Year        int      `json:"year"`
	Rating      string   `json:"rating"`
	Match       int      `json:"match"`
	MediaType   string   `json:"media_type"`
	VideoURL    string   `json:"video_url"`
	Genres      []string `json:"genres,omitempty"`
}
