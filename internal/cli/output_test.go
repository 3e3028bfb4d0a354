package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("cause")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := WrapExitError(ExitFailure, "run failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "run failed: cause", err.Error())
	assert.Equal(t, "run failed", NewExitError(ExitFailure, "run failed").Error())
}

func TestOutputFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"attempted": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	buf.Reset()
	require.NoError(t, f.SuccessRun("0191b2c3-d4e5-7f60-8a9b-0c1d2e3f4a5b", map[string]int{"attempted": 3}))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "0191b2c3-d4e5-7f60-8a9b-0c1d2e3f4a5b", resp.RunToken)

	buf.Reset()
	require.NoError(t, f.Error(ErrCodeConfigInvalid, "schema violation", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfigInvalid, resp.Error.Code)
}

func TestEmitError(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	in := NewExitError(ExitCommandError, "refusing to purge without --force")
	assert.Same(t, error(in), emitError(f, in), "the error passes through untouched")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCommandError, resp.Error.Code)

	// Run failures carry the run_failed code.
	buf.Reset()
	emitError(f, NewExitError(ExitFailure, "migration run failed"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, ErrCodeRunFailed, resp.Error.Code)

	// Text mode writes nothing; rendering is the caller's stderr path.
	text := &OutputFormatter{Format: "text", Writer: &buf}
	buf.Reset()
	emitError(text, in)
	assert.Empty(t, buf.String())
}

func TestOutputFormatterText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf, Verbose: true}

	require.NoError(t, f.Error(ErrCodeConfigInvalid, "schema violation", "workers must be int"))
	assert.Contains(t, buf.String(), "Error [config_invalid]: schema violation")
	assert.Contains(t, buf.String(), "workers must be int")
}

func TestVerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut, Verbose: true}

	f.VerboseLog("fetched %d rows", 7)
	assert.Empty(t, out.String(), "diagnostics must not corrupt JSON output")
	assert.Equal(t, "fetched 7 rows\n", errOut.String())

	f.Verbose = false
	errOut.Reset()
	f.VerboseLog("quiet")
	assert.Empty(t, errOut.String())
}
