package pco

import "errors"

// Error kinds returned by the client. Callers classify failures with
// errors.Is; every error a Writer method returns wraps exactly one of
// these sentinels.
var (
	// ErrInvalidConfiguration marks a configuration field that failed its
	// validator. Raised synchronously at the point of assignment and again
	// as the fail-fast guard in Start.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrConnectionUnavailable marks a transport-level failure reaching the
	// writer service: connection refused, timeout, DNS failure. Depending on
	// the call path it is either escalated (IsRunning, lifecycle commands)
	// or treated as "writer not up" (statistics fallback).
	ErrConnectionUnavailable = errors.New("writer service unavailable")

	// ErrRemoteOperationFailed marks a well-formed but unsuccessful server
	// response: an HTTP error status or an acknowledgement with success=false.
	ErrRemoteOperationFailed = errors.New("remote operation failed")

	// ErrCameraNotFound is returned when a camera config file does not
	// contain an entry for the requested camera name.
	ErrCameraNotFound = errors.New("camera not found in config file")
)
