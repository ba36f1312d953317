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

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"github.com/ethereum/go-ethereum/log"
)

// status is enumeration of the execution state of an interpreter run.
type status byte

const (
	statusRunning  status = iota // < all fine, ops are processed
	statusStopped                // < execution stopped with a STOP or at the end of the code
	statusReturned               // < execution stopped with a RETURN
	statusReverted               // < execution stopped with a REVERT
	statusFailed                 // < execution stopped with a fault, see context.fault
)

func (s status) String() string {
	switch s {
	case statusRunning:
		return "running"
	case statusStopped:
		return "stopped"
	case statusReturned:
		return "returned"
	case statusReverted:
		return "reverted"
	case statusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

// context is the execution environment of an interpreter run. It contains all
// the necessary state to execute a contract, including input parameters, the
// contract code, and internal execution state such as the program counter,
// stack, and memory. For each contract execution, a new context is created.
type context struct {
	// Inputs
	params   basalt.Parameters
	context  basalt.RunContext
	code     basalt.Code
	analysis *Analysis

	// Execution state
	pc     int
	gas    basalt.Gas
	stack  *stack
	memory *Memory

	// Outputs
	returnData []byte // < the data of a RETURN or REVERT
	fault      error  // < the reason of a failed execution

	// Configuration
	shaCache *sha3HashCache // nil if hashes are not cached
}

// useGas reduces the gas level by the given amount. If there is not enough
// gas left, the gas level remains unchanged and an out of gas error is
// returned.
func (c *context) useGas(amount basalt.Gas) error {
	if c.gas < 0 || amount < 0 || c.gas < amount {
		return errOutOfGas
	}
	c.gas -= amount
	return nil
}

// expandMemory charges the given extra fee together with the price of
// growing the memory to cover the given range. Memory is only expanded if
// the total can be paid for.
func (c *context) expandMemory(offset, size uint64, extra basalt.Gas) error {
	fee, err := c.memory.expansionCosts(offset, size)
	if err != nil {
		return err
	}
	if err := c.useGas(fee + extra); err != nil {
		return err
	}
	c.memory.expandWithoutCharging(offset, size)
	return nil
}

// --- Interpreter ---

type runner interface {
	// run executes the contract code in the given context until the
	// execution terminates and returns the final status. Faults are
	// reported by statusFailed, their cause is recorded in the context.
	run(*context) status
}

func run(
	config config,
	params basalt.Parameters,
	analysis *Analysis,
) basalt.Result {
	// Don't bother with the execution if there's no code.
	if len(params.Code) == 0 {
		return basalt.Result{
			Status:  basalt.StatusHalted,
			Success: true,
			GasLeft: params.Gas,
		}
	}

	// Set up execution context.
	var ctxt = context{
		params:   params,
		context:  params.Context,
		code:     params.Code,
		analysis: analysis,
		gas:      params.Gas,
		stack:    newStack(),
		memory:   NewMemory(),
		shaCache: config.shaCache,
	}
	defer returnStack(ctxt.stack)

	runner := config.runner
	if runner == nil {
		runner = vanillaRunner{}
	}
	status := runner.run(&ctxt)
	if status == statusFailed {
		log.Debug("execution failed", "pc", ctxt.pc, "op", ctxt.currentOp(), "err", ctxt.fault)
	}
	return generateResult(status, &ctxt)
}

func generateResult(status status, ctxt *context) basalt.Result {
	limit := ctxt.params.Gas
	switch status {
	case statusStopped:
		return basalt.Result{
			Status:  basalt.StatusHalted,
			Success: true,
			GasUsed: limit - ctxt.gas,
			GasLeft: ctxt.gas,
		}
	case statusReturned:
		return basalt.Result{
			Status:  basalt.StatusHalted,
			Success: true,
			Output:  ctxt.returnData,
			GasUsed: limit - ctxt.gas,
			GasLeft: ctxt.gas,
		}
	case statusReverted:
		return basalt.Result{
			Status:  basalt.StatusReverted,
			Output:  ctxt.returnData,
			GasUsed: limit - ctxt.gas,
			GasLeft: ctxt.gas,
		}
	default:
		// A failed call consumes all the gas it was given.
		err := ctxt.fault
		if err == nil {
			err = fmt.Errorf("unexpected interpreter status: %v", status)
		}
		return basalt.Result{
			Status:  basalt.StatusFailed,
			GasUsed: limit,
			Err:     err,
		}
	}
}

// currentOp returns the instruction at the current position, STOP beyond
// the end of the code.
func (c *context) currentOp() vm.OpCode {
	if c.pc < 0 || c.pc >= len(c.code) {
		return vm.STOP
	}
	return vm.OpCode(c.code[c.pc])
}

// --- Runners ---

// vanillaRunner is the default runner that executes the contract code without
// any additional features.
type vanillaRunner struct{}

func (r vanillaRunner) run(c *context) status {
	status := statusRunning
	for status == statusRunning {
		status = step(c)
	}
	return status
}

// --- Execution ---

// step executes the instruction at the current position of the program
// counter. Running past the end of the code is an implicit STOP. Any fault
// is recorded in the context and reported as statusFailed, leaving the
// program counter at the faulting instruction.
func step(c *context) status {
	if c.pc >= len(c.code) {
		return statusStopped
	}
	status, err := execute(c, vm.OpCode(c.code[c.pc]))
	if err != nil {
		c.fault = err
		return statusFailed
	}
	if status == statusRunning {
		c.pc++
	}
	return status
}

// execute runs a single instruction. The checks preceding the actual
// execution are performed in a fixed order: the opcode must be supported,
// the static gas price must be affordable and the stack must hold enough
// operands and leave enough room for the results. Dynamic costs and the
// validity of operands are checked by the instructions themselves.
func execute(c *context, op vm.OpCode) (status, error) {
	if !isSupported(op) {
		return statusFailed, errInvalidOpcode
	}

	// Consume static gas price for instruction before execution
	if err := c.useGas(staticGasPrices[op]); err != nil {
		return statusFailed, err
	}

	// Check stack boundary for every instruction
	if err := checkStackLimits(c.stack.len(), op); err != nil {
		return statusFailed, err
	}

	switch {
	case op.IsPush():
		opPush(c, op.PushSize())
		return statusRunning, nil
	case op.IsDup():
		opDup(c, int(op-vm.DUP1)+1)
		return statusRunning, nil
	case op.IsSwap():
		opSwap(c, int(op-vm.SWAP1)+1)
		return statusRunning, nil
	}

	var err error
	switch op {
	case vm.STOP:
		return statusStopped, nil
	case vm.RETURN:
		if err := opEndWithResult(c); err != nil {
			return statusFailed, err
		}
		return statusReturned, nil
	case vm.REVERT:
		if err := opEndWithResult(c); err != nil {
			return statusFailed, err
		}
		return statusReverted, nil
	case vm.JUMPDEST:
		// nothing
	case vm.JUMP:
		err = opJump(c)
	case vm.JUMPI:
		err = opJumpi(c)
	case vm.PC:
		opPc(c)
	case vm.POP:
		opPop(c)
	case vm.ADD:
		opAdd(c)
	case vm.SUB:
		opSub(c)
	case vm.MUL:
		opMul(c)
	case vm.DIV:
		opDiv(c)
	case vm.SDIV:
		opSDiv(c)
	case vm.MOD:
		opMod(c)
	case vm.SMOD:
		opSMod(c)
	case vm.ADDMOD:
		opAddMod(c)
	case vm.MULMOD:
		opMulMod(c)
	case vm.EXP:
		err = opExp(c)
	case vm.SIGNEXTEND:
		opSignExtend(c)
	case vm.LT:
		opLt(c)
	case vm.GT:
		opGt(c)
	case vm.SLT:
		opSlt(c)
	case vm.SGT:
		opSgt(c)
	case vm.EQ:
		opEq(c)
	case vm.ISZERO:
		opIszero(c)
	case vm.AND:
		opAnd(c)
	case vm.OR:
		opOr(c)
	case vm.XOR:
		opXor(c)
	case vm.NOT:
		opNot(c)
	case vm.BYTE:
		opByte(c)
	case vm.SHL:
		opShl(c)
	case vm.SHR:
		opShr(c)
	case vm.SAR:
		opSar(c)
	case vm.SHA3:
		err = opSha3(c)
	case vm.ADDRESS:
		opAddress(c)
	case vm.BALANCE:
		opBalance(c)
	case vm.ORIGIN:
		opOrigin(c)
	case vm.CALLER:
		opCaller(c)
	case vm.CALLVALUE:
		opCallvalue(c)
	case vm.CALLDATALOAD:
		opCallDataload(c)
	case vm.CALLDATASIZE:
		opCallDatasize(c)
	case vm.CALLDATACOPY:
		err = genericDataCopy(c, c.params.Input)
	case vm.CODESIZE:
		opCodeSize(c)
	case vm.CODECOPY:
		err = genericDataCopy(c, c.code)
	case vm.GASPRICE:
		opGasPrice(c)
	case vm.BLOCKHASH:
		opBlockhash(c)
	case vm.COINBASE:
		opCoinbase(c)
	case vm.TIMESTAMP:
		opTimestamp(c)
	case vm.NUMBER:
		opNumber(c)
	case vm.DIFFICULTY:
		opDifficulty(c)
	case vm.GASLIMIT:
		opGasLimit(c)
	case vm.CHAINID:
		opChainId(c)
	case vm.SELFBALANCE:
		opSelfbalance(c)
	case vm.MLOAD:
		err = opMload(c)
	case vm.MSTORE:
		err = opMstore(c)
	case vm.MSTORE8:
		err = opMstore8(c)
	case vm.SLOAD:
		opSload(c)
	case vm.SSTORE:
		opSstore(c)
	case vm.MSIZE:
		opMsize(c)
	case vm.GAS:
		opGas(c)
	default:
		err = errInvalidOpcode
	}
	if err != nil {
		return statusFailed, err
	}
	return statusRunning, nil
}
