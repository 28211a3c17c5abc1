package docstruct

import "errors"

// Error taxonomy. Only ErrInvalidPackage (surfaced via ooxml.ErrInvalidPackage
// at the caller) propagates out of a conversion; everything below it is
// absorbed locally with a best-effort default, per the error-handling design.
var (
	// ErrMissingOptionalPart marks an absent numbering or styles part.
	// Never returned to callers — recorded here for documentation only,
	// since the recovery is to treat the registry as empty and continue.
	ErrMissingOptionalPart = errors.New("docstruct: optional part missing")

	// ErrMalformedProperty marks a paragraph/cell XML subtree missing an
	// expected attribute. Recovered locally to a zero-value default.
	ErrMalformedProperty = errors.New("docstruct: malformed property")
)

// HookAction is the result a PostProcessHook can request for a node.
type HookAction int

const (
	// ActionPass leaves the node untouched.
	ActionPass HookAction = iota
	// ActionUpdate signals the hook mutated the node in place.
	ActionUpdate
	// ActionRemove drops the node from the stream during post-processing.
	ActionRemove
)

// PostProcessHook is invoked once per stream element after the walk
// completes and before serialization. The default, PassHook, is a no-op,
// matching the unimplemented extension point it is grounded on.
type PostProcessHook func(*Node) HookAction

// PassHook never changes or removes a node.
func PassHook(*Node) HookAction { return ActionPass }

// FailedExport is the envelope the JSON serializer emits when a
// DownstreamSerializationFailure occurs, for operator triage.
type FailedExport struct {
	Result    string `json:"result"`
	Traceback string `json:"traceback"`
}
