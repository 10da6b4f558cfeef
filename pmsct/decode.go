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

package pmsct

import (
	"errors"
	"fmt"
)

const (
	// RunMarker starts a run of repeated bytes in the compressed stream
	RunMarker = 0xA5
	// AnchorMarker starts an absolute sample in the expanded stream
	AnchorMarker = 0x5A

	// MaxRunLength is the longest run a single run marker can express
	MaxRunLength = 256
)

var (
	// ErrTruncatedRun is returned when a run marker is not followed by its count and value
	ErrTruncatedRun = errors.New("pmsct: truncated run")
	// ErrTruncatedAnchor is returned when an anchor marker is not followed by both sample bytes
	ErrTruncatedAnchor = errors.New("pmsct: truncated anchor")
)

// Decode decompresses a PMSCT_RLE1 stream into 16-bit samples. The number of samples returned is
// always even; dropped reports whether an odd trailing sample was discarded.
func Decode(src []byte) (samples []uint16, dropped bool, err error) {
	expanded, err := ExpandRuns(src)
	if err != nil {
		return nil, false, err
	}
	samples, err = DecodeDeltas(expanded)
	if err != nil {
		return nil, false, err
	}
	samples, dropped = EvenLength(samples)
	return samples, dropped, nil
}

// ExpandRuns is the first decoding pass. It replaces every run "0xA5 n v" of src with n+1 copies of
// v. Errors wrap ErrTruncatedRun.
func ExpandRuns(src []byte) ([]byte, error) {
	dst := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] != RunMarker {
			dst = append(dst, src[i])
			continue
		}
		if i+2 >= len(src) {
			return nil, fmt.Errorf("run at offset %d of %d bytes: %w", i, len(src), ErrTruncatedRun)
		}
		count, value := int(src[i+1])+1, src[i+2]
		for ; count > 0; count-- {
			dst = append(dst, value)
		}
		i += 2
	}
	return dst, nil
}

// DecodeDeltas is the second decoding pass. It turns the expanded stream into samples without
// dropping an odd trailing sample. Errors wrap ErrTruncatedAnchor.
func DecodeDeltas(src []byte) ([]uint16, error) {
	dst := make([]uint16, 0, len(src))
	var delta uint16
	for i := 0; i < len(src); i++ {
		if src[i] == AnchorMarker {
			if i+2 >= len(src) {
				return nil, fmt.Errorf("anchor at offset %d of %d bytes: %w", i, len(src), ErrTruncatedAnchor)
			}
			delta = uint16(src[i+2])<<8 | uint16(src[i+1])
			dst = append(dst, delta)
			i += 2
			continue
		}
		// differences are signed, so bytes from 0x80 step down
		delta += uint16(int8(src[i]))
		dst = append(dst, delta)
	}
	return dst, nil
}

// EvenLength drops the last sample when there is an odd number of samples. It reports whether a
// sample was dropped.
func EvenLength(samples []uint16) ([]uint16, bool) {
	if len(samples)%2 != 0 {
		return samples[:len(samples)-1], true
	}
	return samples, false
}
