package ioselect

import "github.com/cloudlink/ioselect/internal/ioselector"

// Token identifies one registration. It is allocated from a single
// process-wide counter (see Poll.Register), so it is safe to use as a
// map key correlating delivered Events back to whatever the caller
// registered.
type Token = ioselector.Token
