package services

import (
	"context"
	"sync"
	"time"

	"github.com/amaumene/streambox/internal/database"
	"github.com/amaumene/streambox/internal/storage"
	"github.com/amaumene/streambox/pkg/logger"
)

const (
	// Default cleanup settings
	defaultCleanupInterval = 1 * time.Hour
	defaultGracePeriod     = 1 * time.Hour
)

// CleanupService periodically removes upload files that no video record
// references, left behind by interrupted uploads or deletes.
type CleanupService struct {
	db          database.Database
	files       *storage.Files
	logger      logger.Logger
	interval    time.Duration
	gracePeriod time.Duration
	now         func() time.Time
	mu          sync.Mutex
	running     bool
	stopChan    chan struct{}
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db database.Database, files *storage.Files, log logger.Logger) *CleanupService {
	if log == nil {
		log = logger.New()
	}
	return &CleanupService{
		db:          db,
		files:       files,
		logger:      log,
		interval:    defaultCleanupInterval,
		gracePeriod: defaultGracePeriod,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// SetGracePeriod sets how old an unreferenced file must be before removal.
// Younger files may belong to an upload still in progress.
func (c *CleanupService) SetGracePeriod(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gracePeriod = duration
}

// SetInterval sets how often cleanup runs
func (c *CleanupService) SetInterval(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = duration
}

// Start begins the cleanup service
func (c *CleanupService) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	interval := c.interval
	c.mu.Unlock()

	c.logger.Infof("[Cleanup] starting with interval %v", interval)

	go c.cleanupLoop(ctx, interval)
}

// Stop stops the cleanup service
func (c *CleanupService) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	c.running = false
	close(c.stopChan)
	c.logger.Infof("[Cleanup] stopped")
}

func (c *CleanupService) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.CleanupNow()
	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.CleanupNow()
		}
	}
}

// CleanupNow removes orphaned files immediately and returns how many went.
func (c *CleanupService) CleanupNow() int {
	c.mu.Lock()
	grace := c.gracePeriod
	c.mu.Unlock()

	referenced, err := c.referencedFiles()
	if err != nil {
		c.logger.Errorf("[Cleanup] failed to load video records: %v", err)
		return 0
	}

	stored, err := c.files.List()
	if err != nil {
		c.logger.Errorf("[Cleanup] %v", err)
		return 0
	}

	cutoff := c.now().Add(-grace)
	removed := 0
	for _, info := range stored {
		if referenced[info.Name()] || info.ModTime().After(cutoff) {
			continue
		}
		if err := c.files.Remove(info.Name()); err != nil {
			c.logger.Warnf("[Cleanup] failed to remove %s: %v", info.Name(), err)
			continue
		}
		c.logger.Debugf("[Cleanup] removed orphaned file %s", info.Name())
		removed++
	}

	if removed > 0 {
		c.logger.Infof("[Cleanup] removed %d orphaned file(s)", removed)
	}
	return removed
}

func (c *CleanupService) referencedFiles() (map[string]bool, error) {
	videos, err := c.db.ListVideos(0)
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]bool, len(videos)*2)
	for _, v := range videos {
		referenced[v.VideoPath] = true
		if v.ThumbnailPath != "" {
			referenced[v.ThumbnailPath] = true
		}
	}
	return referenced, nil
}
