package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/cyclenext/cli"
	"github.com/grovetools/cyclenext/errors"
	"github.com/grovetools/cyclenext/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(nil)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "cyclenext.yml", content)
}

func TestConfigShowDefaults(t *testing.T) {
	testutil.IsolateHome(t)

	out, err := execute(t, "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "# Source: built-in defaults")
	assert.Contains(t, out, "task_command: task")
	assert.Contains(t, out, "lazy_after_secs: 180")
}

func TestConfigShowFile(t *testing.T) {
	testutil.IsolateHome(t)
	path := writeConfig(t, "lazy_factor: 3\n")

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "# Source: "+path)
	assert.Contains(t, out, "lazy_factor: 3")
}

func TestConfigSchema(t *testing.T) {
	testutil.IsolateHome(t)

	out, err := execute(t, "config", "schema")
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Contains(t, schema, "properties")
}

func TestConfigValidate(t *testing.T) {
	testutil.IsolateHome(t)
	dir := t.TempDir()

	good := testutil.WriteFile(t, dir, "good.yml", "loop_delay_secs: 0.5\n")
	out, err := execute(t, "config", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, good)

	bad := testutil.WriteFile(t, dir, "bad.yml", "unknown_key: 1\n")
	_, err = execute(t, "config", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestPaths(t *testing.T) {
	home := testutil.IsolateHome(t)

	out, err := execute(t, "paths")
	require.NoError(t, err)

	var paths PathsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &paths))
	assert.Equal(t, filepath.Join(home, "config"), paths.ConfigDir)
	assert.Equal(t, filepath.Join(home, "state", "logs"), paths.LogDir)
	assert.Empty(t, paths.ConfigFile)
}

func TestVersion(t *testing.T) {
	testutil.IsolateHome(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cyclenext "))
}

func TestRootHelp(t *testing.T) {
	testutil.IsolateHome(t)

	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "USAGE")
	assert.Contains(t, out, "--config")
}

func TestStartupFailures(t *testing.T) {
	testutil.IsolateHome(t)

	missingDir := filepath.Join(t.TempDir(), "nowhere")
	emptyDir := testutil.CreateTaskDir(t, map[string]string{"pending.data": ""})

	tests := []struct {
		name   string
		config string
		code   errors.ErrorCode
	}{
		{"unreadable task dir", "task_dir: " + missingDir + "\n", errors.ErrCodeTaskDirUnreadable},
		{"no watched files", "task_dir: " + emptyDir + "\n", errors.ErrCodeNoWatchedFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.config)

			_, err := execute(t, "--config", path, "--", "ready")
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestMissingTaskCommand(t *testing.T) {
	testutil.IsolateHome(t)
	taskDir := testutil.CreateTaskDir(t, map[string]string{"undo.data": ""})
	path := writeConfig(t, "task_dir: "+taskDir+"\ntask_command: cyclenext-no-such-task\n")

	_, err := execute(t, "-c", path, "--")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCommandNotFound, errors.GetCode(err))
}

func TestRunUntilCancelled(t *testing.T) {
	testutil.IsolateHome(t)

	taskDir := testutil.CreateTaskDir(t, map[string]string{
		"undo.data":    "x\n",
		"backlog.data": "{}\n{}\n{}\n",
	})
	script := testutil.WriteScript(t, `echo "TASK $*"`)

	path := writeConfig(t, "task_dir: "+taskDir+"\ntask_command: "+script+"\nlimit: page\n")
	opts, filter, err := cli.ParseOptions([]string{"--config", path, "--", "+work"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var stdout, stderr bytes.Buffer
	require.NoError(t, runWatch(ctx, opts, filter, strings.NewReader(""), &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "filter: +work - last change 0 minutes ago - 2 unsynced items")
	assert.Contains(t, out, "TASK +work rc.gc=off rc.reserved.lines=2 rc.verbose=nothing limit:page")
	assert.True(t, strings.HasSuffix(out, Farewell+"\n"))
}

func TestExecuteExitCodes(t *testing.T) {
	testutil.IsolateHome(t)

	assert.Equal(t, 0, Execute(context.Background(), []string{"version"}))
	assert.Equal(t, 1, Execute(context.Background(), []string{"config", "validate", filepath.Join(t.TempDir(), "missing.yml")}))
}

func TestRunReportsOldChanges(t *testing.T) {
	testutil.IsolateHome(t)

	taskDir := testutil.CreateTaskDir(t, map[string]string{
		"undo.data":    "x\n",
		"backlog.data": "{}\n",
	})
	twoHoursAgo := time.Now().Add(-2 * time.Hour)
	testutil.SetModTime(t, filepath.Join(taskDir, "undo.data"), twoHoursAgo)
	testutil.SetModTime(t, filepath.Join(taskDir, "backlog.data"), twoHoursAgo)
	script := testutil.WriteScript(t, `echo "TASK $*"`)

	path := writeConfig(t, "task_dir: "+taskDir+"\ntask_command: "+script+"\n")
	opts, filter, err := cli.ParseOptions([]string{"-c", path, "--"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var stdout bytes.Buffer
	require.NoError(t, runWatch(ctx, opts, filter, strings.NewReader(""), &stdout, &bytes.Buffer{}))

	out := stdout.String()
	assert.Contains(t, out, "filter: ready - last change 2.0 hours ago\n")
	assert.Contains(t, out, "TASK ready rc.gc=off rc.reserved.lines=2 rc.verbose=nothing limit:")
	assert.NotContains(t, out, "unsynced")
}

func TestRunStopsWhenTaskCommandIsInterrupted(t *testing.T) {
	testutil.IsolateHome(t)

	taskDir := testutil.CreateTaskDir(t, map[string]string{"undo.data": "x\n"})
	script := testutil.WriteScript(t, `echo "TASK $*"; kill -TERM $$`)

	path := writeConfig(t, "task_dir: "+taskDir+"\ntask_command: "+script+"\n")
	opts, filter, err := cli.ParseOptions([]string{"-c", path, "--"})
	require.NoError(t, err)

	// No deadline fires before the child dies; the run must still end cleanly.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var stdout bytes.Buffer
	start := time.Now()
	require.NoError(t, runWatch(ctx, opts, filter, strings.NewReader(""), &stdout, &bytes.Buffer{}))

	assert.Less(t, time.Since(start), 30*time.Second)
	assert.Equal(t, 1, strings.Count(stdout.String(), "TASK ready"))
	assert.True(t, strings.HasSuffix(stdout.String(), Farewell+"\n"))
}

func TestRunWakesOnChange(t *testing.T) {
	testutil.IsolateHome(t)

	taskDir := testutil.CreateTaskDir(t, map[string]string{"undo.data": "x\n"})
	undo := filepath.Join(taskDir, "undo.data")
	// Old data makes the loop lazy: 10s sleeps, 300s forced interval.
	testutil.SetModTime(t, undo, time.Now().Add(-time.Hour))
	script := testutil.WriteScript(t, `echo "TASK $*"`)

	path := writeConfig(t, "task_dir: "+taskDir+"\ntask_command: "+script+"\nloop_delay_secs: 2\nwake_on_change: true\n")
	opts, filter, err := cli.ParseOptions([]string{"-c", path, "--"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	// Keep touching the file so every sleep of the tick gets woken.
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f, err := os.OpenFile(undo, os.O_APPEND|os.O_WRONLY, 0644)
				if err != nil {
					return
				}
				f.WriteString("y\n")
				f.Close()
			}
		}
	}()

	var stdout bytes.Buffer
	require.NoError(t, runWatch(ctx, opts, filter, strings.NewReader(""), &stdout, &bytes.Buffer{}))
	<-done

	// Without wake-ups the second redraw would come after 20s at the earliest.
	assert.GreaterOrEqual(t, strings.Count(stdout.String(), "TASK ready"), 2)
}
