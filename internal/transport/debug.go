package transport

import (
	"sync"

	"github.com/theodoreOnzGit/teh-o/internal/logger"
)

func DebugLog(format string, args ...interface{}) {
	if Debug {
		logger.Debugf(format, args...)
	}
}

var once sync.Once

func DebugLogOnce(format string, args ...interface{}) {
	if !Debug {
		return
	}
	once.Do(func() {
		logger.Debugf(format, args...)
	})
}
