package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptPresenceKey returns the cache key tracking a candidate's last heartbeat.
func (r *CacheKeyStruct) AttemptPresenceKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:last_seen", attemptID)
}

// TestMonitorChannel returns the Redis PubSub channel for a test's live monitor.
func (r *CacheKeyStruct) TestMonitorChannel(testID string) string {
	return fmt.Sprintf("test:%s:monitor", testID)
}

var CacheKey = NewCacheKeyStruct()
