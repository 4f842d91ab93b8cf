//go:build !linux

package capture

import "context"

// stubSource is used on platforms without a built-in event source.
// Callers there must supply their own EventSource implementation.
type stubSource struct{}

func newPlatformSource() EventSource {
	return stubSource{}
}

func (stubSource) Start(ctx context.Context) (<-chan RawEvent, error) {
	return nil, ErrNotAvailable
}

func (stubSource) Stop() error {
	return nil
}

func (stubSource) Available() (bool, string) {
	return false, "keyboard capture not implemented for this platform"
}
