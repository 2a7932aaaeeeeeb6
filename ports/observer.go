package ports

// ProgressObserver is an optional side-channel for resampling progress.
// It is injected rather than shared global state and carries no data
// contract; implementations must not block the loop.
type ProgressObserver interface {
	Start(total int)
	Step(key string, err error)
	Finish()
}

// NopObserver discards all progress events.
type NopObserver struct{}

func (NopObserver) Start(int)          {}
func (NopObserver) Step(string, error) {}
func (NopObserver) Finish()            {}
