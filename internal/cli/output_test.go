package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ahghee/internal/compiler"
	"github.com/roach88/ahghee/internal/config"
	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/parser"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"result": "success"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeSyntax, "syntax error at 1:5: unexpected EOF", map[string]int{"line": 1})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E004", resp.Error.Code)
	assert.Equal(t, "syntax error at 1:5: unexpected EOF", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			err := formatter.Error(ErrCodeCompile, "compilation failed", map[string]string{"stage": "skip"})
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Error [E005]: compilation failed")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Compiled %s", "get")

			assert.Empty(t, buf.String())
			if tt.wantLog {
				assert.Equal(t, "Compiled get\n", errBuf.String())
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("run: %w", WrapExitError(ExitFailure, "failed", errors.New("x"))), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	_, syntaxErr := parser.Parse("get (")
	require.Error(t, syntaxErr)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"syntax", syntaxErr, ErrCodeSyntax},
		{"compile", &compiler.Error{Kind: compiler.UnsupportedOperator, Message: "unknown stage"}, ErrCodeCompile},
		{"not found", &engine.StorageError{Code: engine.ErrCodeNotFound, ID: ir.NodeID{IRI: "n"}, Op: "get", Err: engine.ErrNotFound}, ErrCodeNotFound},
		{"storage", &engine.StorageError{Code: engine.ErrCodeStorageFailure, Op: "add", Err: errors.New("disk full")}, ErrCodeStorage},
		{"config", &config.Error{Field: "workers", Message: "out of bound"}, ErrCodeConfig},
		{"other", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	err := WrapExitError(ExitCommandError, "failed to open database", errors.New("permission denied"))
	assert.Equal(t, "failed to open database: permission denied", err.Error())
	assert.Equal(t, "permission denied", errors.Unwrap(err).Error())
}
