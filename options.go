package ioselect

import "github.com/cloudlink/ioselect/internal/ioselector"

// SetGoschedAfterEvent controls whether a Poll yields the processor
// after converting each raw platform event into an Event. It is a
// process-wide setting affecting every Poll. Off by default.
func SetGoschedAfterEvent(enabled bool) {
	ioselector.GoschedAfterEvent = enabled
}
