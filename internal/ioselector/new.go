package ioselector

// New constructs the Selector for the current platform: epoll on Linux,
// kqueue on BSD/Darwin, IOCP on Windows.
func New() (Selector, error) {
	return newPlatformSelector()
}
