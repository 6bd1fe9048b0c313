package highlight

import (
	"strconv"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultPatternCacheTTL = 30 * time.Minute
	patternCleanupInterval = time.Hour

	// MatchTimeout bounds a single match of a user pattern. A match that
	// backtracks longer fails with an error and its rule is skipped.
	MatchTimeout = 2 * time.Second
)

var (
	patternCacheMu sync.RWMutex
	patternCache   = gocache.New(DefaultPatternCacheTTL, patternCleanupInterval)
)

// ConfigurePatternCache replaces the compiled pattern cache with one whose
// entries expire after ttl.
func ConfigurePatternCache(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultPatternCacheTTL
	}
	patternCacheMu.Lock()
	defer patternCacheMu.Unlock()
	patternCache = gocache.New(ttl, max(ttl, patternCleanupInterval))
}

// CompilePattern compiles a user pattern with line anchors enabled, reusing a
// previously compiled expression when one is cached.
func CompilePattern(pattern string, ignoreCase bool) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.Multiline)
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	key := strconv.Itoa(int(opts)) + "\x00" + pattern

	patternCacheMu.RLock()
	cache := patternCache
	patternCacheMu.RUnlock()

	if cached, ok := cache.Get(key); ok {
		if re, ok := cached.(*regexp2.Regexp); ok {
			return re, nil
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	cache.SetDefault(key, re)
	return re, nil
}
