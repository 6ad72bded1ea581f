// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package secrets

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the encoded share. They are equivalent to the message:
//
//	message Share {
//	  uint32 index = 1;
//	  bytes values = 2;
//	}
const (
	indexField  protowire.Number = 1
	valuesField protowire.Number = 2
)

// MarshalBinary encodes the share in protobuf wire format.
func (s Share) MarshalBinary() ([]byte, error) {
	var b []byte
	if s.index != 0 {
		b = protowire.AppendTag(b, indexField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.index))
	}
	if len(s.values) != 0 {
		b = protowire.AppendTag(b, valuesField, protowire.BytesType)
		b = protowire.AppendBytes(b, s.values)
	}
	return b, nil
}

// UnmarshalBinary decodes a share produced by MarshalBinary.
// Unknown fields are skipped.
func (s *Share) UnmarshalBinary(b []byte) error {
	var (
		index  uint64
		values []byte
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("invalid share encoding: %v", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == indexField && typ == protowire.VarintType:
			index, n = protowire.ConsumeVarint(b)
		case num == valuesField && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			values = append([]byte(nil), v...)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("invalid share encoding of field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	if index > math.MaxUint8 {
		return fmt.Errorf("share index %d does not fit in a byte", index)
	}
	s.index = byte(index)
	s.values = values
	return nil
}
