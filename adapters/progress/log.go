package progress

import (
	"log"
)

// Logger reports resampling progress through the standard logger. It is an
// optional observer; the engines default to discarding progress events.
type Logger struct {
	prefix string
	total  int
	done   int
	failed int
}

// NewLogger creates a progress logger with a subsystem prefix.
func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

func (l *Logger) Start(total int) {
	l.total = total
	l.done = 0
	l.failed = 0
	log.Printf("[%s] starting %d fits", l.prefix, total)
}

func (l *Logger) Step(key string, err error) {
	l.done++
	if err != nil {
		l.failed++
		log.Printf("[%s] fit %s failed, skipping: %v", l.prefix, key, err)
		return
	}
	if l.done%10 == 0 || l.done == l.total {
		log.Printf("[%s] %d/%d fits done", l.prefix, l.done, l.total)
	}
}

func (l *Logger) Finish() {
	log.Printf("[%s] finished: %d ok, %d failed", l.prefix, l.done-l.failed, l.failed)
}
