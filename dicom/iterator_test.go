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
	"io"
	"reflect"
	"testing"
)

func TestDataElementIterator_Order(t *testing.T) {
	iter, err := NewDataElementIterator(bytes.NewReader(constructBytes(t, testDataSet(ImplicitVRLittleEndianUID))))
	if err != nil {
		t.Fatalf("NewDataElementIterator(_) => %v", err)
	}
	defer iter.Close()

	var got []DataElementTag
	for elem, err := iter.Next(); err != io.EOF; elem, err = iter.Next() {
		if err != nil {
			t.Fatalf("Next() => %v", err)
		}
		// streamed values are left unread, the iterator discards them
		got = append(got, elem.Tag)
	}

	want := append([]DataElementTag{FileMetaInformationGroupLengthTag}, testDataSet(ImplicitVRLittleEndianUID).SortedTags()...)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDataElementIterator_StreamsValues(t *testing.T) {
	iter, err := NewDataElementIterator(bytes.NewReader(constructBytes(t, testDataSet(ExplicitVRLittleEndianUID))))
	if err != nil {
		t.Fatalf("NewDataElementIterator(_) => %v", err)
	}
	defer iter.Close()

	for elem, err := iter.Next(); err != io.EOF; elem, err = iter.Next() {
		if err != nil {
			t.Fatalf("Next() => %v", err)
		}
		switch elem.Tag {
		case ReferencedStudySequenceTag:
			if _, ok := elem.ValueField.(SequenceIterator); !ok {
				t.Fatalf("got %T, want SequenceIterator", elem.ValueField)
			}
		case PixelDataTag:
			bulk, ok := elem.ValueField.(BulkDataIterator)
			if !ok {
				t.Fatalf("got %T, want BulkDataIterator", elem.ValueField)
			}
			fragments, err := CollectFragments(bulk)
			if err != nil {
				t.Fatalf("CollectFragments(_) => %v", err)
			}
			want := [][]byte{{0x11, 0x11, 0x22, 0x22, 0x33, 0x33, 0x44, 0x44}}
			if !reflect.DeepEqual(fragments, want) {
				t.Fatalf("got %v, want %v", fragments, want)
			}
		}
	}
}

func TestNewDataElementIterator_MetaHeaderErrors(t *testing.T) {
	signature := append(make([]byte, 128), []byte("DICM")...)
	tests := []struct {
		name  string
		input []byte
	}{
		{
			"first meta element is not the group length",
			append(append([]byte{}, signature...), 0x02, 0x00, 0x10, 0x00, 'U', 'L', 0x04, 0x00, 0x00, 0x00, 0x00, 0x00),
		},
		{
			"implausible group length",
			append(append([]byte{}, signature...), 0x02, 0x00, 0x00, 0x00, 'U', 'L', 0x04, 0x00, 0xFF, 0xFF, 0xFF, 0x7F),
		},
		{
			"missing transfer syntax",
			append(append([]byte{}, signature...), 0x02, 0x00, 0x00, 0x00, 'U', 'L', 0x04, 0x00, 0x00, 0x00, 0x00, 0x00),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDataElementIterator(bytes.NewReader(tc.input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
