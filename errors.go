package ioselect

import "github.com/cloudlink/ioselect/internal/ioselector"

var (
	// ErrInterrupted is returned by Poll.Poll once the Poll has been
	// closed (Registrator.CloseLoop was called), and by
	// Registrator.Register/CloseLoop for any call after the first
	// CloseLoop.
	ErrInterrupted = ioselector.ErrInterrupted

	// ErrUnimplemented is returned by Register calls that request
	// Writable interest.
	ErrUnimplemented = ioselector.ErrUnimplemented
)
