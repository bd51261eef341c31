package app

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

const testModeEnv = "CORPSITE_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// detectTestMode reads the CORPSITE_TEST_MODE flag once.
func detectTestMode() {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	testModeFlag.Store(on)
}

// InTestMode reports whether the binaries should skip startup side effects
// such as the catalog bootstrap and the Redis connection.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	testModeOnce.Do(func() {})
	detectTestMode()
}
