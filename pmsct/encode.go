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

// minRun is the shortest run of equal bytes worth a run marker
const minRun = 4

// Encode compresses samples into a PMSCT_RLE1 stream. Decode(Encode(samples)) returns samples
// whenever len(samples) is even.
func Encode(samples []uint16) []byte {
	return compressRuns(encodeDeltas(samples))
}

func encodeDeltas(samples []uint16) []byte {
	dst := make([]byte, 0, len(samples))
	var prev uint16
	for _, s := range samples {
		diff := int16(s - prev)
		if diff >= -128 && diff <= 127 && byte(int8(diff)) != AnchorMarker {
			dst = append(dst, byte(int8(diff)))
		} else {
			dst = append(dst, AnchorMarker, byte(s), byte(s>>8))
		}
		prev = s
	}
	return dst
}

func compressRuns(src []byte) []byte {
	dst := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		run := 1
		for i+run < len(src) && src[i+run] == src[i] && run < MaxRunLength {
			run++
		}
		// a literal run marker must be escaped as a run of its own
		if run >= minRun || src[i] == RunMarker {
			dst = append(dst, RunMarker, byte(run-1), src[i])
			i += run
			continue
		}
		dst = append(dst, src[i])
		i++
	}
	return dst
}
