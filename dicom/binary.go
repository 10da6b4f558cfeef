// Copyright 2018 Google LLC
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

package dicom

import (
	"encoding/binary"
	"fmt"
	"math"
)

// decodeNumbers decodes the value field of a binary number VR
func decodeNumbers(b []byte, vr *VR, order binary.ByteOrder) (interface{}, error) {
	if len(b)%vr.wordSize != 0 {
		return nil, fmt.Errorf("%v value of %d bytes is not a multiple of %d", vr, len(b), vr.wordSize)
	}
	n := len(b) / vr.wordSize
	switch vr {
	case USVR:
		v := make([]uint16, n)
		for i := range v {
			v[i] = order.Uint16(b[2*i:])
		}
		return v, nil
	case SSVR:
		v := make([]int16, n)
		for i := range v {
			v[i] = int16(order.Uint16(b[2*i:]))
		}
		return v, nil
	case ULVR:
		v := make([]uint32, n)
		for i := range v {
			v[i] = order.Uint32(b[4*i:])
		}
		return v, nil
	case SLVR:
		v := make([]int32, n)
		for i := range v {
			v[i] = int32(order.Uint32(b[4*i:]))
		}
		return v, nil
	case FLVR:
		v := make([]float32, n)
		for i := range v {
			v[i] = math.Float32frombits(order.Uint32(b[4*i:]))
		}
		return v, nil
	case FDVR:
		v := make([]float64, n)
		for i := range v {
			v[i] = math.Float64frombits(order.Uint64(b[8*i:]))
		}
		return v, nil
	}
	return nil, fmt.Errorf("%v is not a binary number vr", vr)
}

// encodeNumbers is the inverse of decodeNumbers
func encodeNumbers(value interface{}, order binary.ByteOrder) ([]byte, error) {
	switch v := value.(type) {
	case []uint16:
		b := make([]byte, 2*len(v))
		for i, x := range v {
			order.PutUint16(b[2*i:], x)
		}
		return b, nil
	case []int16:
		b := make([]byte, 2*len(v))
		for i, x := range v {
			order.PutUint16(b[2*i:], uint16(x))
		}
		return b, nil
	case []uint32:
		b := make([]byte, 4*len(v))
		for i, x := range v {
			order.PutUint32(b[4*i:], x)
		}
		return b, nil
	case []int32:
		b := make([]byte, 4*len(v))
		for i, x := range v {
			order.PutUint32(b[4*i:], uint32(x))
		}
		return b, nil
	case []float32:
		b := make([]byte, 4*len(v))
		for i, x := range v {
			order.PutUint32(b[4*i:], math.Float32bits(x))
		}
		return b, nil
	case []float64:
		b := make([]byte, 8*len(v))
		for i, x := range v {
			order.PutUint64(b[8*i:], math.Float64bits(x))
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported binary number type: %T", value)
}

// decodeTags decodes an AT value field. Each tag is a group number followed by an element number.
func decodeTags(b []byte, order binary.ByteOrder) ([]uint32, error) {
	if len(b)%tagSize != 0 {
		return nil, fmt.Errorf("AT value of %d bytes is not a multiple of %d", len(b), tagSize)
	}
	tags := make([]uint32, len(b)/tagSize)
	for i := range tags {
		tags[i] = uint32(order.Uint16(b[4*i:]))<<16 | uint32(order.Uint16(b[4*i+2:]))
	}
	return tags, nil
}

func encodeTags(value interface{}, order binary.ByteOrder) ([]byte, error) {
	tags, ok := value.([]uint32)
	if !ok {
		return nil, fmt.Errorf("unexpected type for tag VR: %T (expected []uint32)", value)
	}
	b := make([]byte, tagSize*len(tags))
	for i, t := range tags {
		order.PutUint16(b[4*i:], DataElementTag(t).GroupNumber())
		order.PutUint16(b[4*i+2:], DataElementTag(t).ElementNumber())
	}
	return b, nil
}

// swapWords returns a copy of b with the bytes of every size byte word reversed. A trailing partial
// word is copied unchanged.
func swapWords(b []byte, size int) []byte {
	out := append([]byte(nil), b...)
	for i := 0; i+size <= len(out); i += size {
		w := out[i : i+size]
		for l, r := 0, size-1; l < r; l, r = l+1, r-1 {
			w[l], w[r] = w[r], w[l]
		}
	}
	return out
}
