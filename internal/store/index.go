// Package store provides a download index: thread-safe tracking of media
// already fetched to local disk, using a Bloom filter for cheap negative
// lookups and an LRU for bounded eviction.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DownloadIndex records which media ids currently have a file on disk, so the
// fetcher can skip re-downloading them. Entries beyond capacity are evicted
// oldest-first; eviction only forgets the id, it never touches the file.
type DownloadIndex struct {
	paths                  map[string]string // media id -> local path
	bloom                  *bloom.BloomFilter
	lru                    *lru.Cache[string, struct{}]
	mutex                  sync.RWMutex
	capacity               int
	bloomFalsePositiveRate float64
}

// NewDownloadIndex creates an index with the given capacity and Bloom filter
// false positive rate.
func NewDownloadIndex(capacity int, bloomFalsePositiveRate float64) *DownloadIndex {
	lruCache, _ := lru.New[string, struct{}](capacity)

	if capacity <= 0 {
		panic("capacity must be positive")
	}
	bloomFilter := bloom.NewWithEstimates(uint(capacity), bloomFalsePositiveRate)

	return &DownloadIndex{
		paths:                  make(map[string]string),
		bloom:                  bloomFilter,
		lru:                    lruCache,
		capacity:               capacity,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}
}

// Lookup returns the recorded local path for a media id, if any.
func (di *DownloadIndex) Lookup(mediaID string) (string, bool) {
	di.mutex.RLock()
	defer di.mutex.RUnlock()

	if !di.bloom.TestString(mediaID) {
		return "", false
	}

	path, exists := di.paths[mediaID]
	return path, exists
}

// Add records a downloaded file for a media id.
func (di *DownloadIndex) Add(mediaID, path string) {
	di.mutex.Lock()
	defer di.mutex.Unlock()

	if _, exists := di.paths[mediaID]; !exists && len(di.paths) >= di.capacity {
		di.evictOldest()
	}

	di.paths[mediaID] = path
	di.bloom.AddString(mediaID)
	di.lru.Add(mediaID, struct{}{})
}

// Remove forgets a media id, typically after its file was cleaned up.
func (di *DownloadIndex) Remove(mediaID string) {
	di.mutex.Lock()
	defer di.mutex.Unlock()

	if _, exists := di.paths[mediaID]; !exists {
		return
	}

	delete(di.paths, mediaID)
	di.lru.Remove(mediaID)
	// The bloom filter does not support removal; stale positives fall through
	// to the map lookup.
}

// Size returns the number of indexed downloads.
func (di *DownloadIndex) Size() int {
	di.mutex.RLock()
	defer di.mutex.RUnlock()
	return len(di.paths)
}

// Clear forgets every indexed download.
func (di *DownloadIndex) Clear() {
	di.mutex.Lock()
	defer di.mutex.Unlock()

	di.paths = make(map[string]string)
	di.bloom = bloom.NewWithEstimates(uint(di.capacity), di.bloomFalsePositiveRate)
	di.lru.Purge()
}

func (di *DownloadIndex) evictOldest() {
	oldestKey, _, ok := di.lru.GetOldest()
	if !ok {
		return
	}

	delete(di.paths, oldestKey)
	di.lru.Remove(oldestKey)
}
