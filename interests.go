package ioselect

import "github.com/cloudlink/ioselect/internal/ioselector"

// Interests is the bitset of readiness conditions a Register call asks
// a Selector to watch for.
type Interests = ioselector.Interests

// Readable and Writable are the two interests a registration can
// combine. Only Readable is implemented: a Register call that includes
// Writable fails with ErrUnimplemented on every platform.
const (
	Readable = ioselector.Readable
	Writable = ioselector.Writable
)
