// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import "github.com/ethereum/go-ethereum/common"

// gasBurnerCode is the runtime code of a contract burning a requested amount
// of gas, without the trailing compiler metadata:
//
//	function burn(uint32 x) public view returns(uint32) {
//		uint256 initialGas = gasleft();
//		uint256 wantGas = initialGas - x;
//		while (gasleft() > wantGas) {}
//		return x;
//	}
const gasBurnerCode = "" +
	"608060405234801561001057600080fd5b506004361061002b5760003560e01c80637a5984c414610030575b600080fd" +
	"5b61004a600480360381019061004591906100cf565b610060565b604051610057919061010b565b60405180910390f3" +
	"5b6000805a905060008363ffffffff168261007a919061015f565b90505b805a1161007d578392505050919050565b60" +
	"0080fd5b600063ffffffff82169050919050565b6100ac81610093565b81146100b757600080fd5b50565b6000813590" +
	"506100c9816100a3565b92915050565b6000602082840312156100e5576100e461008e565b5b60006100f38482850161" +
	"00ba565b91505092915050565b61010581610093565b82525050565b600060208201905061012060008301846100fc56" +
	"5b92915050565b6000819050919050565b7f4e487b710000000000000000000000000000000000000000000000000000" +
	"0000600052601160045260246000fd5b600061016a82610126565b915061017583610126565b92508282039050818111" +
	"1561018d5761018c610130565b5b9291505056fe"

// GetGasBurnerExample provides a contract running a loop until the requested
// amount of gas is consumed. Its result is its argument.
func GetGasBurnerExample() Example {
	return exampleSpec{
		Name:      "gas_burner",
		code:      common.FromHex(gasBurnerCode),
		function:  0x7a5984c4,
		reference: func(x int) int { return x },
	}.build()
}
