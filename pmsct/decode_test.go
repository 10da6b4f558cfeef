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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestExpandRuns(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", []byte{}, []byte{}},
		{"no run markers is the identity", []byte{0x01, 0x5A, 0x7F, 0x80}, []byte{0x01, 0x5A, 0x7F, 0x80}},
		{"run of three", []byte{0xA5, 0x02, 0x07}, []byte{0x07, 0x07, 0x07}},
		{"run of one", []byte{0xA5, 0x00, 0xA5}, []byte{0xA5}},
		{"longest run", []byte{0xA5, 0xFF, 0x01}, repeat(0x01, 256)},
		{"runs between literals", []byte{0x01, 0xA5, 0x01, 0x5A, 0x02}, []byte{0x01, 0x5A, 0x5A, 0x02}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExpandRuns(tc.in)
			if err != nil {
				t.Fatalf("ExpandRuns(%v) => %v", tc.in, err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("ExpandRuns(%v) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestDecodeDeltas(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []uint16
	}{
		{"empty", []byte{}, []uint16{}},
		{"running sum", []byte{0x01, 0x02, 0x03}, []uint16{1, 3, 6}},
		{"anchor", []byte{0x5A, 0x34, 0x12}, []uint16{0x1234}},
		{"anchor resets delta", []byte{0x05, 0x5A, 0x34, 0x12, 0x01}, []uint16{5, 0x1234, 0x1235}},
		{"anchor bytes are not markers", []byte{0x5A, 0x5A, 0x5A, 0x01}, []uint16{0x5A5A, 0x5A5B}},
		{"negative differences", []byte{0x5A, 0x00, 0x01, 0xFF, 0x80}, []uint16{0x0100, 0x00FF, 0x007F}},
		{"wraps below zero", []byte{0xFF}, []uint16{0xFFFF}},
		{"wraps above 65535", []byte{0x5A, 0xFF, 0xFF, 0x01}, []uint16{0xFFFF, 0x0000}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeDeltas(tc.in)
			if err != nil {
				t.Fatalf("DecodeDeltas(%v) => %v", tc.in, err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("DecodeDeltas(%v) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		in          []byte
		want        []uint16
		wantDropped bool
	}{
		{"empty", nil, []uint16{}, false},
		{"even count is kept", []byte{0x01, 0x01}, []uint16{1, 2}, false},
		{"odd count drops the last sample", []byte{0x01, 0x01, 0x01}, []uint16{1, 2}, true},
		{"single sample is dropped", []byte{0x5A, 0x34, 0x12}, []uint16{}, true},
		{"run of differences", []byte{0xA5, 0x03, 0x02}, []uint16{2, 4, 6, 8}, false},
		{"run of anchor markers", []byte{0xA5, 0x02, 0x5A, 0x00}, []uint16{0x5A5A, 0x5A5A}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, dropped, err := Decode(tc.in)
			if err != nil {
				t.Fatalf("Decode(%v) => %v", tc.in, err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Decode(%v) mismatch (-want +got):\n%s", tc.in, diff)
			}
			if dropped != tc.wantDropped {
				t.Fatalf("Decode(%v) dropped = %v, want %v", tc.in, dropped, tc.wantDropped)
			}
			if len(got)%2 != 0 {
				t.Fatalf("Decode(%v) returned %d samples, want an even count", tc.in, len(got))
			}
		})
	}
}

func TestDecode_NoMarkersIsRunningSum(t *testing.T) {
	in := make([]byte, 0, 1000)
	for i := 0; len(in) < cap(in); i++ {
		b := byte(i*37) & 0x7F
		if b == AnchorMarker {
			continue
		}
		in = append(in, b)
	}

	want := make([]uint16, len(in))
	var sum uint16
	for i, b := range in {
		sum += uint16(b)
		want[i] = sum
	}

	got, _, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode(_) => %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Decode(_) mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Truncated(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"run marker is the last byte", []byte{0x01, 0xA5}, ErrTruncatedRun},
		{"run marker without value", []byte{0xA5, 0x02}, ErrTruncatedRun},
		{"anchor marker is the last byte", []byte{0x01, 0x5A}, ErrTruncatedAnchor},
		{"anchor without high byte", []byte{0x5A, 0x34}, ErrTruncatedAnchor},
		{"anchor truncated after run expansion", []byte{0x01, 0xA5, 0x01, 0x5A}, ErrTruncatedAnchor},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Decode(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Decode(%v) => (%v, %v), want error %v", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestEvenLength(t *testing.T) {
	got, dropped := EvenLength([]uint16{1, 2, 3})
	if !dropped {
		t.Fatal("expected the trailing sample to be dropped")
	}
	if diff := cmp.Diff([]uint16{1, 2}, got); diff != "" {
		t.Fatalf("EvenLength mismatch (-want +got):\n%s", diff)
	}
	if _, dropped := EvenLength([]uint16{1, 2}); dropped {
		t.Fatal("expected no sample to be dropped")
	}
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
