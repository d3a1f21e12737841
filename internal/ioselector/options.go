package ioselector

// GoschedAfterEvent controls whether Select yields the processor after
// converting each raw platform event into an Event. Off by default;
// enabling it can reduce latency spikes for other goroutines on a
// system with very bursty event batches.
var GoschedAfterEvent bool
