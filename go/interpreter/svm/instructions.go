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
	"slices"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/holiman/uint256"
)

// Operands of instructions with dynamic costs are peeked first and popped
// only after all costs have been charged, so that a failing instruction
// leaves stack and memory untouched.

var (
	wordSize = uint256.NewInt(32)
	byteSize = uint256.NewInt(1)
)

// --- Control flow ---

func opEndWithResult(c *context) error {
	start, size, err := checkMemoryRange(c.stack.peekN(0), c.stack.peekN(1))
	if err != nil {
		return err
	}
	if err := c.expandMemory(start, size, 0); err != nil {
		return err
	}
	c.returnData = slices.Clone(c.memory.getSlice(start, size))
	c.stack.pop()
	c.stack.pop()
	return nil
}

func opPc(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.pc))
}

func checkJumpDest(c *context, destination *uint256.Int) error {
	if !destination.IsUint64() || !c.analysis.IsJumpDest(destination.Uint64()) {
		return errInvalidJump
	}
	return nil
}

func opJump(c *context) error {
	destination := c.stack.peek()
	if err := checkJumpDest(c, destination); err != nil {
		return err
	}
	c.stack.pop()
	// Update the PC to the jump destination -1 since interpreter will increase PC by 1 afterward.
	c.pc = int(destination.Uint64()) - 1
	return nil
}

func opJumpi(c *context) error {
	destination := c.stack.peekN(0)
	condition := c.stack.peekN(1)
	if !condition.IsZero() {
		if err := checkJumpDest(c, destination); err != nil {
			return err
		}
		c.pc = int(destination.Uint64()) - 1
	}
	c.stack.pop()
	c.stack.pop()
	return nil
}

// --- Stack ---

func opPop(c *context) {
	c.stack.pop()
}

// opPush reads the n immediate bytes following the instruction. Code
// analysis guarantees that all of them are present.
func opPush(c *context, n int) {
	data := c.code[c.pc+1 : c.pc+1+n]
	c.stack.pushUndefined().SetBytes(data)
	c.pc += n
}

func opDup(c *context, pos int) {
	c.stack.dup(pos)
}

func opSwap(c *context, pos int) {
	c.stack.swap(pos)
}

// --- Memory ---

func opMstore(c *context) error {
	start, _, err := checkMemoryRange(c.stack.peekN(0), wordSize)
	if err != nil {
		return err
	}
	if err := c.expandMemory(start, 32, 0); err != nil {
		return err
	}
	c.stack.pop()
	c.memory.setWord(start, c.stack.pop())
	return nil
}

func opMstore8(c *context) error {
	start, _, err := checkMemoryRange(c.stack.peekN(0), byteSize)
	if err != nil {
		return err
	}
	if err := c.expandMemory(start, 1, 0); err != nil {
		return err
	}
	c.stack.pop()
	c.memory.setByte(start, byte(c.stack.pop().Uint64()))
	return nil
}

func opMload(c *context) error {
	top := c.stack.peek()
	start, _, err := checkMemoryRange(top, wordSize)
	if err != nil {
		return err
	}
	if err := c.expandMemory(start, 32, 0); err != nil {
		return err
	}
	c.memory.readWord(start, top)
	return nil
}

func opMsize(c *context) {
	c.stack.pushUndefined().SetUint64(c.memory.length())
}

// --- Storage ---

func opSstore(c *context) {
	key := basalt.Key(c.stack.pop().Bytes32())
	value := basalt.Word(c.stack.pop().Bytes32())
	c.context.SetStorage(c.params.Recipient, key, value)
}

func opSload(c *context) {
	top := c.stack.peek()
	value := c.context.GetStorage(c.params.Recipient, basalt.Key(top.Bytes32()))
	top.SetBytes32(value[:])
}

func opBalance(c *context) {
	top := c.stack.peek()
	balance := c.context.GetBalance(basalt.Address(top.Bytes20()))
	top.SetBytes32(balance[:])
}

func opSelfbalance(c *context) {
	balance := c.context.GetBalance(c.params.Recipient)
	c.stack.pushUndefined().SetBytes32(balance[:])
}

// --- Call environment ---

func opAddress(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Recipient[:])
}

func opOrigin(c *context) {
	origin := c.params.Origin
	c.stack.pushUndefined().SetBytes20(origin[:])
}

func opCaller(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Sender[:])
}

func opCallvalue(c *context) {
	c.stack.pushUndefined().SetBytes32(c.params.Value[:])
}

func opCallDatasize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.params.Input)))
}

func opCallDataload(c *context) {
	top := c.stack.peek()
	offset, overflow := top.Uint64WithOverflow()
	if overflow {
		top.Clear()
		return
	}
	value := getData(c.params.Input, offset, 32)
	top.SetBytes32(value)
}

func opCodeSize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.code)))
}

func opGasPrice(c *context) {
	price := c.params.GasPrice
	c.stack.pushUndefined().SetBytes32(price[:])
}

// genericDataCopy implements CALLDATACOPY and CODECOPY, copying from the
// given source into memory. Reads beyond the end of the source yield zeros.
func genericDataCopy(c *context, source []byte) error {
	var (
		memOffset  = c.stack.peekN(0)
		dataOffset = c.stack.peekN(1)
		length     = c.stack.peekN(2)
	)

	start, size, err := checkMemoryRange(memOffset, length)
	if err != nil {
		return err
	}

	// Charge for length of copied data
	words := basalt.SizeInWords(size)
	if err := c.expandMemory(start, size, copyWordGas*basalt.Gas(words)); err != nil {
		return err
	}

	offset, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		offset = 0xffffffffffffffff
	}
	c.memory.set(start, size, getData(source, offset, size))

	c.stack.pop()
	c.stack.pop()
	c.stack.pop()
	return nil
}

// getData returns size bytes of data starting at the given position, right
// padded with zeros where the requested range exceeds the available data.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length || end < start {
		end = length
	}
	res := make([]byte, int(size))
	copy(res, data[start:end])
	return res
}

// --- Block environment ---

func opBlockhash(c *context) {
	num := c.stack.peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return
	}
	var upper, lower uint64
	upper = uint64(max(c.params.BlockNumber, 0))
	if upper < 257 {
		lower = 0
	} else {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		hash := c.context.GetBlockHash(int64(num64))
		num.SetBytes32(hash[:])
	} else {
		num.Clear()
	}
}

func opCoinbase(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Coinbase[:])
}

func opTimestamp(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.params.Timestamp))
}

func opNumber(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.params.BlockNumber))
}

func opDifficulty(c *context) {
	c.stack.pushUndefined().SetBytes32(c.params.PrevRandao[:])
}

func opGasLimit(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.params.GasLimit))
}

func opChainId(c *context) {
	id := c.params.ChainID
	c.stack.pushUndefined().SetBytes32(id[:])
}

func opGas(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.gas))
}

// --- Arithmetic ---

func opAdd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Add(a, b)
}

func opSub(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Sub(a, b)
}

func opMul(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mul(a, b)
}

// opDiv yields zero for a zero divisor.
func opDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Div(a, b)
}

func opSDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SDiv(a, b)
}

// opMod yields zero for a zero modulus.
func opMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mod(a, b)
}

func opSMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SMod(a, b)
}

func opAddMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.AddMod(a, b, n)
}

func opMulMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.MulMod(a, b, n)
}

func opExp(c *context) error {
	exponent := c.stack.peekN(1)
	if err := c.useGas(expByteGas * basalt.Gas(exponent.ByteLen())); err != nil {
		return err
	}
	base := c.stack.pop()
	exponent.Exp(base, exponent)
	return nil
}

func opSignExtend(c *context) {
	back, num := c.stack.pop(), c.stack.peek()
	num.ExtendSign(num, back)
}

// --- Comparison and bitwise logic ---

func opLt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Lt(b))
}

func opGt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Gt(b))
}

func opSlt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Slt(b))
}

func opSgt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Sgt(b))
}

func opEq(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Eq(b))
}

func opIszero(c *context) {
	top := c.stack.peek()
	setBool(top, top.IsZero())
}

func setBool(z *uint256.Int, value bool) {
	if value {
		z.SetOne()
	} else {
		z.Clear()
	}
}

func opAnd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.And(a, b)
}

func opOr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Or(a, b)
}

func opXor(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Xor(a, b)
}

func opNot(c *context) {
	a := c.stack.peek()
	a.Not(a)
}

func opByte(c *context) {
	th, val := c.stack.pop(), c.stack.peek()
	val.Byte(th)
}

func opShl(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.Lsh(b, uint(a.Uint64()))
	} else {
		b.Clear()
	}
}

func opShr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.Rsh(b, uint(a.Uint64()))
	} else {
		b.Clear()
	}
}

func opSar(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.GtUint64(255) {
		if b.Sign() >= 0 {
			b.Clear()
		} else {
			b.SetAllOne()
		}
		return
	}
	b.SRsh(b, uint(a.Uint64()))
}

// --- Hashing ---

func opSha3(c *context) error {
	start, size, err := checkMemoryRange(c.stack.peekN(0), c.stack.peekN(1))
	if err != nil {
		return err
	}

	// charge dynamic gas price and memory expansion at once
	words := basalt.SizeInWords(size)
	if err := c.expandMemory(start, size, sha3WordGas*basalt.Gas(words)); err != nil {
		return err
	}

	data := c.memory.getSlice(start, size)
	var hash basalt.Hash
	if c.shaCache != nil {
		// Cache hashes since identical values are frequently re-hashed.
		hash = c.shaCache.hash(data)
	} else {
		hash = basalt.Keccak256(data)
	}

	c.stack.pop()
	c.stack.peek().SetBytes32(hash[:])
	return nil
}
