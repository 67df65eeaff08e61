package registry

import "fmt"

// ProtectedResourceError is returned when a delete is attempted on a
// system-owned pipeline or stage. The operation is refused before any
// network call is made.
type ProtectedResourceError struct {
	ID   string
	Name string
}

func (e *ProtectedResourceError) Error() string {
	return fmt.Sprintf("%s (%s) is system-owned and cannot be deleted", e.Name, e.ID)
}

// NoDefaultStageError is returned when a pipeline is selected that has no
// default stage for the required record kind. The selection is rejected;
// this is a warning-level condition, not a fatal one.
type NoDefaultStageError struct {
	PipelineID string
	Kind       string
}

func (e *NoDefaultStageError) Error() string {
	return fmt.Sprintf("pipeline %s has no default %s stage", e.PipelineID, e.Kind)
}

// NoStageAvailableError is returned when submit-time stage resolution has
// exhausted every fallback, i.e. the stage collection is completely empty.
// The submission is aborted.
type NoStageAvailableError struct {
	PipelineID string
	Kind       string
}

func (e *NoStageAvailableError) Error() string {
	return fmt.Sprintf("no stage available for pipeline %s kind %s", e.PipelineID, e.Kind)
}
