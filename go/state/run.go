// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"fmt"

	"github.com/Fantom-foundation/Basalt/go/basalt"
)

// RunAtomic executes a call using the given interpreter on this state. If
// the call does not complete successfully, all storage modifications made
// by it are rolled back. If no run context is set in the parameters, this
// state is used.
func (s *InMemory) RunAtomic(interpreter basalt.Interpreter, params basalt.Parameters) (basalt.Result, error) {
	if params.Context == nil {
		params.Context = s
	}
	snapshot := s.CreateSnapshot()
	result, err := interpreter.Run(params)
	if err != nil || !result.Success {
		if restoreErr := s.RestoreSnapshot(snapshot); restoreErr != nil {
			return result, fmt.Errorf("failed to roll back call: %w", restoreErr)
		}
	}
	return result, err
}

// CallParameters creates the parameters for calling the code stored at the
// given account, using this state as run context.
func (s *InMemory) CallParameters(recipient basalt.Address, gas basalt.Gas) basalt.Parameters {
	hash := s.GetCodeHash(recipient)
	params := basalt.Parameters{
		Context:   s,
		Recipient: recipient,
		Gas:       gas,
		Code:      s.GetCode(recipient),
	}
	if len(params.Code) > 0 {
		params.CodeHash = &hash
	}
	return params
}
