package domain

import "errors"

var (
	// ErrInvalidArgument marks a request rejected before any numeric work:
	// unsupported band, missing levels, unknown MESH method or malformed sweeps.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientSweeps is returned when fewer than MinSweeps sweeps are supplied.
	ErrInsufficientSweeps = errors.New("insufficient sweeps")
)

// Advisory codes.
const (
	AdvisorySweepCountLow = "sweep_count_low"
)

// Advisory is a non-fatal diagnostic attached to a product. The retrieval
// still ran to completion.
type Advisory struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
