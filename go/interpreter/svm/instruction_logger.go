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
	"fmt"
	"io"
	"sync"

	"github.com/Fantom-foundation/Basalt/go/basalt"
)

// Logger is a tracer writing a line per executed step to an io.Writer.
// The log format is `<op>, <gas left>, <top-of-stack>`. A nil writer
// disables the output.
type Logger struct {
	mutex sync.Mutex
	log   io.Writer
	err   error
}

// NewLogger creates a new logging tracer that writes to the provided
// io.Writer.
func NewLogger(writer io.Writer) *Logger {
	return &Logger{log: writer}
}

func (l *Logger) OnStep(step basalt.Step) {
	if l.log == nil {
		return
	}
	top := "-empty-"
	if len(step.Stack) > 0 {
		top = step.Stack[len(step.Stack)-1].ToBig().String()
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintf(l.log, "%v, %d, %v\n", step.Op, step.GasLeft, top)
}

// Err returns the first error encountered while writing the log. No more
// output is produced after a write failed.
func (l *Logger) Err() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.err
}
