// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package validation checks call parameters against configurable limits
// before they are handed to an interpreter, and parses the hex encoded
// values accepted by command line front-ends.
package validation

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

const (
	ErrGasLimitTooLow  = basalt.ConstError("gas limit too low")
	ErrGasLimitTooHigh = basalt.ConstError("gas limit too high")
	ErrCodeTooLarge    = basalt.ConstError("code too large")
	ErrInputTooLarge   = basalt.ConstError("input too large")
	ErrInvalidHex      = basalt.ConstError("invalid hex")
)

const (
	DefaultMinGas       basalt.Gas = 1
	DefaultMaxGas       basalt.Gas = 30_000_000
	DefaultMaxCodeSize             = 24_576
	DefaultMaxInputSize            = 1 << 20
)

// Limits bounds the parameters of a single call.
type Limits struct {
	MinGas       basalt.Gas
	MaxGas       basalt.Gas
	MaxCodeSize  int
	MaxInputSize int
}

// Default returns the limits applied when no configuration is provided.
func Default() Limits {
	return Limits{
		MinGas:       DefaultMinGas,
		MaxGas:       DefaultMaxGas,
		MaxCodeSize:  DefaultMaxCodeSize,
		MaxInputSize: DefaultMaxInputSize,
	}
}

// Check returns an error wrapping one of the package's sentinel errors if the
// given parameters violate the limits. Gas limits below one are always
// rejected, independent of the configured minimum.
func (l Limits) Check(params basalt.Parameters) error {
	minGas := max(l.MinGas, 1)
	if params.Gas < minGas {
		return fmt.Errorf("%w: %d < %d", ErrGasLimitTooLow, params.Gas, minGas)
	}
	if l.MaxGas > 0 && params.Gas > l.MaxGas {
		return fmt.Errorf("%w: %d > %d", ErrGasLimitTooHigh, params.Gas, l.MaxGas)
	}
	if l.MaxCodeSize > 0 && len(params.Code) > l.MaxCodeSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrCodeTooLarge, len(params.Code), l.MaxCodeSize)
	}
	if l.MaxInputSize > 0 && len(params.Input) > l.MaxInputSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrInputTooLarge, len(params.Input), l.MaxInputSize)
	}
	return nil
}

// ParseHex decodes a hex string with or without 0x prefix. Empty strings and
// a lone prefix decode to an empty slice.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	if s == "0x" {
		return []byte{}, nil
	}
	res, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return res, nil
}

// ParseAddress decodes a 20 byte address given in hex.
func ParseAddress(s string) (basalt.Address, error) {
	var res basalt.Address
	data, err := ParseHex(s)
	if err != nil {
		return res, err
	}
	if len(data) != len(res) {
		return res, fmt.Errorf("%w: address must have %d bytes, got %d", ErrInvalidHex, len(res), len(data))
	}
	copy(res[:], data)
	return res, nil
}

// ParseValue decodes a 256-bit value given either as 0x prefixed hex or as a
// decimal number.
func ParseValue(s string) (basalt.Value, error) {
	s = strings.TrimSpace(s)
	if has0xPrefix(s) {
		value, err := uint256.FromHex(s)
		if err != nil {
			return basalt.Value{}, fmt.Errorf("%w: %v", ErrInvalidHex, err)
		}
		return basalt.ValueFromUint256(value), nil
	}
	if s == "" {
		return basalt.Value{}, fmt.Errorf("empty value")
	}
	value, err := uint256.FromDecimal(s)
	if err != nil {
		return basalt.Value{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return basalt.ValueFromUint256(value), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
