// Package database provides data persistence using BoltDB.
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/amaumene/streambox/internal/models"
)

const (
	// Default database file permissions
	dbFileMode = 0600
	dbDirMode  = 0755

	// Default database filename
	defaultDBFile = "streambox.db"

	openTimeout = time.Second
)

var videosBucket = []byte("custom_videos")

// Database defines the interface for data persistence operations.
type Database interface {
	// InsertVideo stores a custom video, replacing any record with the same id
	InsertVideo(video *models.CustomVideo) error
	// GetVideo returns nil without error when the id is unknown
	GetVideo(id string) (*models.CustomVideo, error)
	// ListVideos returns up to limit videos, oldest first
	ListVideos(limit int) ([]models.CustomVideo, error)
	// DeleteVideo reports whether a record was removed
	DeleteVideo(id string) (bool, error)
	// Close closes the database
	Close() error
}

// BoltDB implements the Database interface using BoltDB.
type BoltDB struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the database file and its buckets.
// If dbPath is empty, uses the default database file in current directory.
func NewBolt(dbPath string) (*BoltDB, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".", defaultDBFile)
	}

	// Ensure database directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, dbFileMode, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(videosBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// Close closes the database file.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// InsertVideo stores the video as JSON keyed by its id.
func (b *BoltDB) InsertVideo(video *models.CustomVideo) error {
	if video.ID == "" {
		return fmt.Errorf("failed to store video: empty id")
	}
	if video.CreatedAt.IsZero() {
		video.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("failed to encode video %s: %w", video.ID, err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(videosBucket).Put([]byte(video.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store video %s: %w", video.ID, err)
	}
	return nil
}

// GetVideo retrieves a video by id.
// Returns nil if not found, without error.
func (b *BoltDB) GetVideo(id string) (*models.CustomVideo, error) {
	var video *models.CustomVideo
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(videosBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		video = &models.CustomVideo{}
		return json.Unmarshal(data, video)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get video %s: %w", id, err)
	}
	return video, nil
}

// ListVideos returns the stored videos ordered by creation time.
// Records that fail to decode are skipped.
func (b *BoltDB) ListVideos(limit int) ([]models.CustomVideo, error) {
	videos := make([]models.CustomVideo, 0)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(videosBucket).ForEach(func(_, v []byte) error {
			var video models.CustomVideo
			if err := json.Unmarshal(v, &video); err != nil {
				return nil
			}
			videos = append(videos, video)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].CreatedAt.Before(videos[j].CreatedAt)
	})
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// DeleteVideo removes a video by id.
func (b *BoltDB) DeleteVideo(id string) (bool, error) {
	var existed bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(videosBucket)
		if bucket.Get([]byte(id)) == nil {
			return nil
		}
		existed = true
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete video %s: %w", id, err)
	}
	return existed, nil
}
