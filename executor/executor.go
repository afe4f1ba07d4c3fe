// Package executor runs model-generated chart code. The code is executed as
// given, with no sandboxing; callers are expected to trust their model.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/smallnest/agentpatterns/log"
)

// ErrEmptyCode is returned when there is nothing to execute.
var ErrEmptyCode = errors.New("no code to execute")

// Executor runs a block of code with a dataset available as df.
type Executor interface {
	Execute(ctx context.Context, code, datasetCSV string) (string, error)
}

// PythonExecutor runs code with a Python interpreter. Before the code runs,
// pandas is imported and the dataset CSV is loaded into df.
type PythonExecutor struct {
	Interpreter string
	WorkDir     string
	Timeout     time.Duration
}

// NewPythonExecutor returns an executor using interpreter, or python3 when empty.
func NewPythonExecutor(interpreter string) *PythonExecutor {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &PythonExecutor{Interpreter: interpreter, Timeout: 2 * time.Minute}
}

// Script returns the full program run for code: the preamble followed by code.
func Script(code, datasetCSV string) string {
	var sb strings.Builder
	sb.WriteString("import pandas as pd\n")
	if datasetCSV != "" {
		sb.WriteString("df = pd.read_csv(" + strconv.Quote(datasetCSV) + ")\n")
	}
	sb.WriteString("\n")
	sb.WriteString(code)
	sb.WriteString("\n")
	return sb.String()
}

// Execute writes the script to a temporary file and runs it. Combined stdout
// and stderr are returned; a non-zero exit is an error carrying that output.
func (p *PythonExecutor) Execute(ctx context.Context, code, datasetCSV string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyCode
	}

	if datasetCSV != "" {
		abs, err := filepath.Abs(datasetCSV)
		if err != nil {
			return "", fmt.Errorf("failed to resolve dataset path: %w", err)
		}
		datasetCSV = abs
	}

	tmp, err := os.CreateTemp("", "agentpatterns-*.py")
	if err != nil {
		return "", fmt.Errorf("failed to create script: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(Script(code, datasetCSV)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write script: %w", err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	interpreter := p.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}
	cmd := exec.CommandContext(ctx, interpreter, tmp.Name())
	cmd.Dir = p.WorkDir
	cmd.Env = append(os.Environ(), "MPLBACKEND=Agg")

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err = cmd.Run()
	log.Debug("executed generated code with %s in %s", interpreter, time.Since(start))
	if err != nil {
		return out.String(), fmt.Errorf("failed to run python script: %w\nOutput: %s", err, out.String())
	}
	return out.String(), nil
}
