package task

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cqerrors "github.com/cklxx/scoutqueue/internal/errors"
)

// minimalTask embeds Base and overrides nothing, to exercise the
// default hook implementations directly.
type minimalTask struct {
	Base
}

func (m *minimalTask) Execute(ctx context.Context, tc *Context) (any, error) {
	return nil, nil
}

func newMinimalTask(id string) *minimalTask {
	return &minimalTask{Base: Base{TaskSpec: NewSpec(id, nil)}}
}

func TestBase_IdentityAccessors(t *testing.T) {
	tk := newMinimalTask("task-1")
	assert.Equal(t, "task-1", tk.ID())
	assert.Equal(t, "task-1", tk.Spec().ID)

	tk.SetParentID("parent-1")
	require.NotNil(t, tk.Spec().ParentID)
	assert.Equal(t, "parent-1", *tk.Spec().ParentID)

	tk.SetOriginatingTaskID("origin-1")
	require.NotNil(t, tk.Spec().OriginatingTaskID)
	assert.Equal(t, "origin-1", *tk.Spec().OriginatingTaskID)
}

func TestBase_ShouldAbortDefaultsTrue(t *testing.T) {
	tk := newMinimalTask("task-1")
	assert.True(t, tk.ShouldAbort(nil, nil), "ShouldAbort should default to true when a command reports no quota")
}

func TestBase_ShouldAbortAfterErrorDefaultsFalse(t *testing.T) {
	tk := newMinimalTask("task-1")
	assert.False(t, tk.ShouldAbortAfterError(nil, errors.New("boom")))
}

func TestBase_ShouldRecordAsError(t *testing.T) {
	tk := newMinimalTask("task-1")

	assert.True(t, tk.ShouldRecordAsError(nil, errors.New("boom")), "a plain error should be recorded as an error")

	partial := cqerrors.NewPartialResponseError(errors.New("cut off"), http.Header{"X-Page": []string{"1"}}, map[string]any{"page": 1})
	assert.False(t, tk.ShouldRecordAsError(nil, partial), "a partial response error should not be recorded as an error")
}

func TestBase_ExtractOutputFromError(t *testing.T) {
	tk := newMinimalTask("task-1")

	partial := cqerrors.NewPartialResponseError(errors.New("cut off"), http.Header{"X-Page": []string{"1"}}, map[string]any{"page": 1})
	out, err := tk.ExtractOutputFromError(nil, partial)
	require.NoError(t, err)
	data, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, data["page"])

	_, err = tk.ExtractOutputFromError(nil, errors.New("boom"))
	assert.Error(t, err)
}

func TestBase_GetErrorMessageRejectsSecondaryRateLimit(t *testing.T) {
	tk := newMinimalTask("task-1")

	msg, err := tk.GetErrorMessage(nil, errors.New("boom"))
	require.NoError(t, err)
	assert.Equal(t, "boom", msg)

	secondary := cqerrors.NewSecondaryRateLimitError(errors.New("rate limited"), 0)
	_, err = tk.GetErrorMessage(nil, secondary)
	assert.Error(t, err, "expected GetErrorMessage to refuse a secondary rate limit error")
}

func TestBase_NextTaskAndNarrowedDownTasksDefaultNil(t *testing.T) {
	tk := newMinimalTask("task-1")

	next, err := tk.NextTask(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, next)

	narrowed, err := tk.NarrowedDownTasks(nil)
	require.NoError(t, err)
	assert.Nil(t, narrowed)
}

func TestBase_SaveOutputAndDebugInstructionsDefaults(t *testing.T) {
	tk := newMinimalTask("task-1")
	assert.NoError(t, tk.SaveOutput(nil, nil))
	assert.Empty(t, tk.GetDebugInstructions(nil))
}

var _ Task = (*minimalTask)(nil)
