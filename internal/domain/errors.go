package domain

import "fmt"

// EngineError is the unified error type for the engine.
// Each error has a numeric code and human-readable message.
type EngineError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// Is matches any EngineError carrying the same code, so errors.Is works for
// sentinels that were re-created with a more specific message.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	return ok && t.Code == e.Code
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf("%s: %v", msg, cause)}
}

// Detail returns a copy of a sentinel with extra context appended.
func Detail(base *EngineError, format string, args ...any) *EngineError {
	return &EngineError{Code: base.Code, Message: base.Message + ": " + fmt.Sprintf(format, args...)}
}

// ---- Road graph errors (-32010 to -32029) ----

var (
	ErrRoadRejected     = &EngineError{Code: -32010, Message: "road operation rejected"}
	ErrNoRoad           = &EngineError{Code: -32011, Message: "no road at cell"}
	ErrUnknownRoadType  = &EngineError{Code: -32012, Message: "unknown road type"}
	ErrInvalidFootprint = &EngineError{Code: -32013, Message: "malformed area footprint"}
)

// ---- Route / order errors (-32030 to -32059) ----

var (
	ErrRouteNotFound       = &EngineError{Code: -32030, Message: "trade route not found"}
	ErrRouteInvalid        = &EngineError{Code: -32031, Message: "trade route has no passable path"}
	ErrRouteInactive       = &EngineError{Code: -32032, Message: "trade route is inactive"}
	ErrOrderNotFound       = &EngineError{Code: -32033, Message: "transport order not found"}
	ErrInvalidTransition   = &EngineError{Code: -32034, Message: "invalid order state transition"}
	ErrNothingToShip       = &EngineError{Code: -32035, Message: "no cargo line can be shipped"}
	ErrUnknownSource       = &EngineError{Code: -32036, Message: "unknown source"}
	ErrUnknownCounterparty = &EngineError{Code: -32037, Message: "unknown counterparty"}
	ErrInvalidCargo        = &EngineError{Code: -32038, Message: "invalid cargo line"}
	ErrOrderSettling       = &EngineError{Code: -32039, Message: "order is settling and cannot be cancelled"}
	ErrCargoNotFound       = &EngineError{Code: -32040, Message: "cargo line not found"}
)

// ---- Job / fleet errors (-32060 to -32079) ----

var (
	ErrJobNotFound      = &EngineError{Code: -32060, Message: "multi-trip job not found"}
	ErrInvalidJob       = &EngineError{Code: -32061, Message: "invalid job parameters"}
	ErrJobNotActive     = &EngineError{Code: -32062, Message: "job is not active"}
	ErrJobAlreadyDone   = &EngineError{Code: -32063, Message: "job already finished"}
	ErrNoVehicles       = &EngineError{Code: -32064, Message: "not enough vehicles available"}
	ErrPoolNotFound     = &EngineError{Code: -32065, Message: "vehicle pool not found"}
	ErrPoolInconsistent = &EngineError{Code: -32066, Message: "vehicle pool release exceeds total"}
)

// ---- Store / config errors (-32130 to -32159) ----

var (
	ErrStoreInit       = &EngineError{Code: -32130, Message: "failed to initialize store"}
	ErrStoreQuery      = &EngineError{Code: -32131, Message: "store query failed"}
	ErrStoreWrite      = &EngineError{Code: -32132, Message: "store write failed"}
	ErrSchemaMigration = &EngineError{Code: -32133, Message: "schema migration failed"}
	ErrConfigInvalid   = &EngineError{Code: -32136, Message: "invalid configuration"}
	ErrUnknownDriver   = &EngineError{Code: -32137, Message: "unknown database driver"}
)
