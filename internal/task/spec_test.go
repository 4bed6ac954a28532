package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecJSONRoundTrip(t *testing.T) {
	parent := "parent-1"
	origin := "origin-1"
	s := &Spec{
		ID:                "task-1",
		ParentID:          &parent,
		OriginatingTaskID: &origin,
		Payload: map[string]any{
			"owner": "octocat",
			"repo":  "hello-world",
			"count": float64(3),
		},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "task-1", flat["id"])
	assert.Equal(t, "octocat", flat["owner"])
	assert.Equal(t, "parent-1", flat["parentId"])

	var got Spec
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, s.ID, got.ID)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent, *got.ParentID)
	require.NotNil(t, got.OriginatingTaskID)
	assert.Equal(t, origin, *got.OriginatingTaskID)
	assert.Equal(t, "octocat", got.Payload["owner"])
	assert.Equal(t, "hello-world", got.Payload["repo"])
	_, leaked := got.Payload["id"]
	assert.False(t, leaked, "scheduler-owned field leaked into Payload")
}

func TestSpecUnmarshalWithoutParentOrOrigin(t *testing.T) {
	raw := []byte(`{"id":"task-2","owner":"octocat"}`)

	var got Spec
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "task-2", got.ID)
	assert.Nil(t, got.ParentID)
	assert.Nil(t, got.OriginatingTaskID)
	assert.Equal(t, "octocat", got.Payload["owner"])
}

func TestSpecClone(t *testing.T) {
	s := NewSpec("task-1", map[string]any{"owner": "octocat"})
	parent := "parent-1"
	s.ParentID = &parent

	clone := s.Clone("task-2")
	assert.Equal(t, "task-2", clone.ID)
	assert.Nil(t, clone.ParentID, "clone should not inherit ParentID")

	clone.Payload["owner"] = "mona"
	assert.Equal(t, "octocat", s.Payload["owner"], "mutating clone payload leaked into original")
}
