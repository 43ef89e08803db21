package core

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CleanupScheduler deletes downloaded media files once their track's duration
// has elapsed. Timers are tracked per path so an early skip can cancel the
// pending deletion. Deletion is best effort: failures are logged and never
// surfaced to playback.
type CleanupScheduler struct {
	buffer  time.Duration
	logger  *zap.Logger
	deleted func() // optional metrics hook

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewCleanupScheduler(buffer time.Duration, logger *zap.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		buffer: buffer,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// SetDeleteHook registers a callback invoked after each successful deletion.
func (c *CleanupScheduler) SetDeleteHook(fn func()) {
	c.deleted = fn
}

// Schedule arms a one-shot deletion of path after the track's duration plus
// the fixed buffer. Live or unparseable durations count as zero, so only the
// buffer applies. Re-scheduling the same path resets its timer.
func (c *CleanupScheduler) Schedule(path, durationDisplay string) {
	if path == "" {
		return
	}
	wait := time.Duration(DisplayToSeconds(durationDisplay))*time.Second + c.buffer

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.timers[path]; ok {
		prev.Stop()
	}
	c.timers[path] = time.AfterFunc(wait, func() {
		c.remove(path)
	})

	c.logger.Debug("Scheduled post-playback cleanup",
		zap.String("path", path),
		zap.Duration("wait", wait))
}

// Cancel disarms a pending deletion, e.g. when the track was skipped and its
// file is being reused or removed elsewhere.
func (c *CleanupScheduler) Cancel(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timer, ok := c.timers[path]; ok {
		timer.Stop()
		delete(c.timers, path)
	}
}

// Flush cancels any pending timer for path and deletes the file immediately.
// Used when a track leaves the queue before its timer expires.
func (c *CleanupScheduler) Flush(path string) {
	c.Cancel(path)
	c.remove(path)
}

// Stop disarms every pending deletion.
func (c *CleanupScheduler) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, timer := range c.timers {
		timer.Stop()
		delete(c.timers, path)
	}
}

func (c *CleanupScheduler) remove(path string) {
	c.mu.Lock()
	delete(c.timers, path)
	c.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		c.logger.Debug("Cleanup target already gone", zap.String("path", path))
		return
	}
	if err := os.Remove(path); err != nil {
		c.logger.Warn("Failed to delete file after playback",
			zap.String("path", path),
			zap.Error(err))
		return
	}
	c.logger.Info("Deleted file after playback", zap.String("path", path))
	if c.deleted != nil {
		c.deleted()
	}
}

// DisplayToSeconds parses an m:ss or h:mm:ss display duration. Anything else,
// the live sentinel included, is zero.
func DisplayToSeconds(display string) int {
	parts := strings.Split(strings.TrimSpace(display), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// SecondsToDisplay renders seconds as m:ss (or h:mm:ss above an hour).
func SecondsToDisplay(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return strconv.Itoa(h) + ":" + pad(m) + ":" + pad(s)
	}
	return strconv.Itoa(m) + ":" + pad(s)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
