package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, transports and the state
// runner return these (optionally wrapped) and services translate them into
// domain errors.
//
//   - ErrNotFound: key or record does not exist in the backend
//   - ErrConflict: optimistic version check failed; the caller may reload and retry
//   - ErrUnavailable: backend or peer temporarily unreachable
//   - ErrClosed: component already shut down and refusing work
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
