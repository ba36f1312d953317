// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package svm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"go.uber.org/mock/gomock"
)

func TestLogger_ExecutesCodeAndLogs(t *testing.T) {
	buffer := bytes.NewBuffer([]byte{})
	interpreter, err := NewInterpreter(Config{Tracer: NewLogger(buffer)})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}

	code := []byte{byte(vm.PUSH1), 2, byte(vm.PUSH1), 3, byte(vm.ADD), byte(vm.STOP)}
	ctrl := gomock.NewController(t)
	result, err := interpreter.Run(basalt.Parameters{
		Context: basalt.NewMockRunContext(ctrl),
		Gas:     100,
		Code:    code,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("execution failed: %v", result.Err)
	}

	want := "PUSH1, 97, 2\nPUSH1, 94, 3\nADD, 91, 5\nSTOP, 91, 5\n"
	if got := buffer.String(); want != got {
		t.Errorf("unexpected log output, wanted %q, got %q", want, got)
	}
}

func TestLogger_EmptyStackIsMarked(t *testing.T) {
	buffer := bytes.NewBuffer([]byte{})
	logger := NewLogger(buffer)
	logger.OnStep(basalt.Step{Op: vm.JUMPDEST, GasLeft: 10})
	if want, got := "JUMPDEST, 10, -empty-\n", buffer.String(); want != got {
		t.Errorf("unexpected log output, wanted %q, got %q", want, got)
	}
}

func TestLogger_IfNoWriterIsProvidedNothingIsLogged(t *testing.T) {
	logger := NewLogger(nil)
	logger.OnStep(basalt.Step{Op: vm.STOP})
	if err := logger.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

type failingWriter struct {
	calls int
}

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("injected error")
}

func TestLogger_StopsLoggingAfterWriteError(t *testing.T) {
	writer := &failingWriter{}
	logger := NewLogger(writer)
	logger.OnStep(basalt.Step{Op: vm.STOP})
	logger.OnStep(basalt.Step{Op: vm.STOP})
	if logger.Err() == nil {
		t.Errorf("write error not reported")
	}
	if want, got := 1, writer.calls; want != got {
		t.Errorf("unexpected number of writes, wanted %d, got %d", want, got)
	}
}
