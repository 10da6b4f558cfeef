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
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestWriteEncapsulatedFormat(t *testing.T) {
	tests := []struct {
		name      string
		fragments [][]byte
		want      []byte
	}{
		{
			"no fragments writes an empty basic offset table",
			nil,
			[]byte{
				0xFE, 0xFF, 0x00, 0xE0, 0x00, 0x00, 0x00, 0x00,
				0xFE, 0xFF, 0xDD, 0xE0, 0x00, 0x00, 0x00, 0x00,
			},
		},
		{
			"odd fragments are padded",
			[][]byte{{}, {0x01}},
			[]byte{
				0xFE, 0xFF, 0x00, 0xE0, 0x00, 0x00, 0x00, 0x00,
				0xFE, 0xFF, 0x00, 0xE0, 0x02, 0x00, 0x00, 0x00, 0x01, 0x00,
				0xFE, 0xFF, 0xDD, 0xE0, 0x00, 0x00, 0x00, 0x00,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := writeEncapsulatedFormat(newDcmWriter(buf, binary.LittleEndian), tc.fragments); err != nil {
				t.Fatalf("writeEncapsulatedFormat(_) => %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tc.want) {
				t.Fatalf("got %v, want %v", buf.Bytes(), tc.want)
			}
		})
	}
}

func TestEncapsulatedFormatIterator(t *testing.T) {
	in := []byte{
		0xFE, 0xFF, 0x00, 0xE0, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xFE, 0xFF, 0x00, 0xE0, 0x02, 0x00, 0x00, 0x00, 0xAB, 0xCD,
		0xFE, 0xFF, 0xDD, 0xE0, 0x00, 0x00, 0x00, 0x00,
		// the next element must be left unread
		0x08, 0x00,
	}
	r := bytes.NewReader(in)
	iter := newEncapsulatedFormatIterator(newDcmReader(r))

	// skip the offset table without reading it
	if _, err := iter.Next(); err != nil {
		t.Fatalf("Next() => %v", err)
	}
	fragment, err := iter.Next()
	if err != nil {
		t.Fatalf("Next() => %v", err)
	}
	got, err := io.ReadAll(fragment)
	if err != nil {
		t.Fatalf("reading fragment: %v", err)
	}
	if !bytes.Equal(got, []byte{0xAB, 0xCD}) {
		t.Fatalf("got %v, want %v", got, []byte{0xAB, 0xCD})
	}
	if _, err := iter.Next(); err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
	if err := iter.Close(); err != nil {
		t.Fatalf("Close() => %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("got %d unread bytes, want 2", r.Len())
	}
}

func TestEncapsulatedFormatIterator_UndefinedFragmentLength(t *testing.T) {
	in := []byte{0xFE, 0xFF, 0x00, 0xE0, 0xFF, 0xFF, 0xFF, 0xFF}
	iter := newEncapsulatedFormatIterator(dcmReaderFromBytes(in))
	if _, err := iter.Next(); err == nil || err == io.EOF {
		t.Fatalf("got %v, want error", err)
	}
}
