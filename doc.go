// Package ioselect is a minimal, portable I/O readiness layer. It
// unifies Linux epoll, BSD/macOS kqueue, and Windows IOCP behind one
// Selector contract: register a TcpStream for a one-shot readiness (or,
// on Windows, completion) notification tagged with a Token, then drain
// ready events from a Poll.
//
// A Poll owns exactly one platform Selector and is driven from a single
// goroutine; its Registrator may be shared across goroutines to
// register streams or cancel the loop (CloseLoop) concurrently with
// that driving goroutine's Poll.Poll call.
//
// This package deliberately does not include files, pipes, signals,
// edge-triggered notification, load-balancing across multiple Polls, a
// built-in thread pool, or a reactor/timer/DNS/TLS/HTTP stack: it is
// the readiness primitive those would be built on top of, not a
// replacement for them.
package ioselect
