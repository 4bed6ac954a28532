// Package task defines the task contract (spec.md §4.2): the opaque,
// serializable Spec every bucket keys on, the polymorphic capability set
// a Command implements, and the per-run Context of shared collaborators.
package task

import "encoding/json"

// Spec is the persisted, opaque description of one unit of work
// (spec.md §3). id/parentId/originatingTaskId are scheduler-owned;
// everything else is command-specific payload the core never
// interprets, only round-trips.
//
// parentId is set once a task has been produced by narrowing a
// repeatedly-failing parent; originatingTaskId is set once a task has
// been produced by pagination (nextTask) or by a requeue clone.
type Spec struct {
	ID                string
	ParentID          *string
	OriginatingTaskID *string
	Payload           map[string]any
}

// NewSpec builds a fresh Spec with the given id and payload. payload may
// be nil.
func NewSpec(id string, payload map[string]any) *Spec {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Spec{ID: id, Payload: payload}
}

// Clone returns a deep-enough copy suitable for pagination/narrowing/
// requeue: a new Spec with a fresh id, no parent/originating links (the
// caller sets whichever applies), and a copy of Payload so mutating the
// clone's fields never touches the original.
func (s *Spec) Clone(newID string) *Spec {
	payload := make(map[string]any, len(s.Payload))
	for k, v := range s.Payload {
		payload[k] = v
	}
	return &Spec{ID: newID, Payload: payload}
}

const (
	fieldID                = "id"
	fieldParentID          = "parentId"
	fieldOriginatingTaskID = "originatingTaskId"
)

// MarshalJSON flattens Payload alongside the scheduler-owned fields into
// a single JSON object, so a command's extra fields round-trip as plain
// top-level keys (spec.md's "arbitrary additional fields" requirement).
func (s *Spec) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s.Payload)+3)
	for k, v := range s.Payload {
		flat[k] = v
	}
	flat[fieldID] = s.ID
	if s.ParentID != nil {
		flat[fieldParentID] = *s.ParentID
	} else {
		flat[fieldParentID] = nil
	}
	if s.OriginatingTaskID != nil {
		flat[fieldOriginatingTaskID] = *s.OriginatingTaskID
	} else {
		flat[fieldOriginatingTaskID] = nil
	}
	return json.Marshal(flat)
}

// UnmarshalJSON is the inverse of MarshalJSON: it lifts id/parentId/
// originatingTaskId out into their typed fields and leaves everything
// else as opaque Payload.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	if idRaw, ok := flat[fieldID]; ok {
		if idStr, ok := idRaw.(string); ok {
			s.ID = idStr
		}
		delete(flat, fieldID)
	}
	if parentRaw, ok := flat[fieldParentID]; ok {
		if parentStr, ok := parentRaw.(string); ok {
			s.ParentID = &parentStr
		}
		delete(flat, fieldParentID)
	}
	if originRaw, ok := flat[fieldOriginatingTaskID]; ok {
		if originStr, ok := originRaw.(string); ok {
			s.OriginatingTaskID = &originStr
		}
		delete(flat, fieldOriginatingTaskID)
	}

	s.Payload = flat
	return nil
}
