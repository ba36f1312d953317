// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"io"

	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"github.com/Fantom-foundation/Basalt/go/interpreter/svm"
	"github.com/Fantom-foundation/Basalt/go/validation"
	"github.com/urfave/cli/v2"
)

var DisasmCmd = cli.Command{
	Action:    doDisasm,
	Name:      "disasm",
	Usage:     "Print the instruction listing of byte code, marking jump destinations with '>'",
	ArgsUsage: "<hex code>",
}

func doDisasm(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one argument, the hex encoded code")
	}
	code, err := validation.ParseHex(context.Args().First())
	if err != nil {
		return err
	}
	return disassemble(context.App.Writer, code)
}

func disassemble(out io.Writer, code []byte) error {
	analysis, err := svm.Analyze(code)
	if err != nil {
		return fmt.Errorf("invalid code: %w", err)
	}
	for pc := 0; pc < len(code); pc++ {
		op := vm.OpCode(code[pc])
		marker := " "
		if analysis.IsJumpDest(uint64(pc)) {
			marker = ">"
		}
		if !op.IsPush() {
			fmt.Fprintf(out, "%s %04x %v\n", marker, pc, op)
			continue
		}
		// the analysis guarantees the immediate data to be complete
		n := op.PushSize()
		fmt.Fprintf(out, "%s %04x %v 0x%x\n", marker, pc, op, code[pc+1:pc+1+n])
		pc += n
	}
	return nil
}
