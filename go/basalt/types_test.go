// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package basalt

import (
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"pgregory.net/rand"
)

func TestAddress_JSON_Encoding(t *testing.T) {
	tests := []struct {
		address Address
		json    string
	}{
		{Address{}, "\"0x0000000000000000000000000000000000000000\""},
		{Address{1}, "\"0x0100000000000000000000000000000000000000\""},
		{
			Address{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19},
			"\"0x000102030405060708090a0b0c0d0e0f10111213\"",
		},
	}

	for _, test := range tests {
		encoded, err := json.Marshal(test.address)
		if err != nil {
			t.Fatalf("failed to encode into JSON: %v", err)
		}
		if want, got := test.json, string(encoded); want != got {
			t.Errorf("unexpected JSON encoding, wanted %v, got %v", want, got)
		}
		var restored Address
		if err := json.Unmarshal(encoded, &restored); err != nil {
			t.Fatalf("failed to restore address: %v", err)
		}
		if test.address != restored {
			t.Errorf("unexpected restored value, wanted %v, got %v", test.address, restored)
		}
	}
}

func TestAddress_JSON_InvalidValueDecodingFails(t *testing.T) {
	tests := map[string]string{
		"empty":         "\"\"",
		"no hex prefix": "\"0000000000000000000000000000000000000000\"",
		"too short":     "\"0x00000000000000000000000000000000000000\"",
		"too long":      "\"0x000000000000000000000000000000000000000000\"",
		"invalid hex":   "\"0x0g00000000000000000000000000000000000000\"",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			var address Address
			if json.Unmarshal([]byte(data), &address) == nil {
				t.Errorf("expected decoding to fail, but instead it produced %v", address)
			}
		})
	}
}

func TestAddress_ConversionToWordIsLeftPadded(t *testing.T) {
	address := Address{0xff, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 0xaa}
	word := address.ToUint256().Bytes32()
	for i := 0; i < 12; i++ {
		if word[i] != 0 {
			t.Fatalf("expected zero padding at byte %d, got %x", i, word)
		}
	}
	if want, got := address, AddressFromUint256(address.ToUint256()); want != got {
		t.Errorf("unexpected address, wanted %v, got %v", want, got)
	}
}

func TestAddress_ConversionFromWordDropsUpperBytes(t *testing.T) {
	word := new(uint256.Int).SetAllOne()
	address := AddressFromUint256(word)
	for i, b := range address {
		if b != 0xff {
			t.Fatalf("unexpected byte %d in %v", i, address)
		}
	}
}

func TestValue_NewValue(t *testing.T) {
	tests := []struct {
		value Value
		index int
	}{
		{NewValue(1), 31},
		{NewValue(1, 0), 23},
		{NewValue(1, 0, 0), 15},
		{NewValue(1, 0, 0, 0), 7},
	}
	for _, test := range tests {
		for i, b := range test.value {
			want := byte(0)
			if i == test.index {
				want = 1
			}
			if want != b {
				t.Errorf("unexpected byte %d in %v, wanted %d, got %d", i, test.value, want, b)
			}
		}
	}
}

func TestValue_Uint256RoundTrip(t *testing.T) {
	value := NewValue(1, 2, 3, 4)
	if want, got := value, ValueFromUint256(value.ToUint256()); want != got {
		t.Errorf("unexpected round trip result, wanted %v, got %v", want, got)
	}
	if want, got := (Value{}), ValueFromUint256(nil); want != got {
		t.Errorf("nil should convert to zero, got %v", got)
	}
}

func TestWord_BigEndianBufferRoundTrip(t *testing.T) {
	r := rand.New(42)
	for i := 0; i < 1000; i++ {
		var buffer [32]byte
		for j := 0; j < 4; j++ {
			binary.BigEndian.PutUint64(buffer[j*8:], r.Uint64())
		}
		value := new(uint256.Int).SetBytes32(buffer[:])
		if want, got := buffer, value.Bytes32(); want != got {
			t.Fatalf("round trip failed, wanted %x, got %x", want, got)
		}
	}
}
