package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/grovetools/cyclenext/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandlerMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "missing task dir",
			err:      errors.TaskDirUnreadable("/home/u/.task", fmt.Errorf("permission denied")),
			contains: []string{"Cannot read the task directory /home/u/.task", "task_dir"},
		},
		{
			name:     "no watched files",
			err:      errors.NoWatchedFiles("/home/u/.task", []string{"undo.data", "backlog.data"}),
			contains: []string{"None of [undo.data backlog.data] exist in /home/u/.task"},
		},
		{
			name:     "missing task command",
			err:      errors.CommandNotFound("task", fmt.Errorf("not found")),
			contains: []string{"Command task not found", "Taskwarrior"},
		},
		{
			name:     "corrupt backlog",
			err:      errors.BacklogCorrupt("/home/u/.task/backlog.data", -1),
			contains: []string{"backlog.data looks truncated"},
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("boom"),
			contains: []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")
			var out bytes.Buffer

			returned := NewErrorHandlerWithWriter(false, &out).Handle(tt.err)

			assert.Equal(t, tt.err, returned)
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestErrorHandlerVerboseDetails(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var out bytes.Buffer

	NewErrorHandlerWithWriter(true, &out).Handle(errors.WatchedFileVanished("/x/undo.data", fmt.Errorf("gone")))

	assert.Contains(t, out.String(), "Error details:")
	assert.Contains(t, out.String(), `"code": "WATCHED_FILE_VANISHED"`)
}

func TestErrorHandlerNil(t *testing.T) {
	var out bytes.Buffer
	assert.NoError(t, NewErrorHandlerWithWriter(false, &out).Handle(nil))
	assert.Empty(t, out.String())
}
