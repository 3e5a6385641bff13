// File: cmd/stylebox/main_test.go
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/stylebox/cmd"
)

func resetMocks() {
	osExit = os.Exit
	stderr = os.Stderr
	execute = cmd.Execute
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 0, exitCode(context.Canceled))
	assert.Equal(t, 0, exitCode(fmt.Errorf("scan: %w", context.Canceled)))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestHandlePanic(t *testing.T) {
	defer resetMocks()

	var code int
	var buf bytes.Buffer
	osExit = func(c int) { code = c }
	stderr = &buf

	func() {
		defer handlePanic()
		panic("layout exploded")
	}()

	assert.Equal(t, 2, code)
	assert.Contains(t, buf.String(), "panic: layout exploded")
	assert.Contains(t, buf.String(), "goroutine")
}

func TestHandlePanic_NoPanic(t *testing.T) {
	defer resetMocks()

	called := false
	osExit = func(int) { called = true }
	func() {
		defer handlePanic()
	}()
	assert.False(t, called)
}

func TestMain_ExitStatus(t *testing.T) {
	defer resetMocks()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", context.Canceled, 0},
		{"failure", errors.New("bad input"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := -1
			osExit = func(c int) { code = c }
			stderr = io.Discard
			execute = func(context.Context) error { return tt.err }

			main()
			assert.Equal(t, tt.want, code)
		})
	}
}
