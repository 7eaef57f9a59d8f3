package plugin

// Output receives every successful sample of a run. Send is called from the
// run loop only, so implementations need no locking unless they share state
// with their own goroutines.
type Output interface {
	Name() string
	Start() error
	Send(s Sample) error
	Stop() error
}
