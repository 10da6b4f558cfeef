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
	"strings"
	"testing"
)

func TestConstruct_Signature(t *testing.T) {
	got := constructBytes(t, testDataSet(ExplicitVRLittleEndianUID))
	if !bytes.Equal(got[:128], make([]byte, 128)) {
		t.Fatalf("expected empty preamble, got %v", got[:128])
	}
	if string(got[128:132]) != "DICM" {
		t.Fatalf("got signature %q, want %q", got[128:132], "DICM")
	}
	// the group length element is always first
	wantGroupLength := []byte{0x02, 0x00, 0x00, 0x00, 'U', 'L', 0x04, 0x00}
	if !bytes.Equal(got[132:140], wantGroupLength) {
		t.Fatalf("got %v, want %v", got[132:140], wantGroupLength)
	}
}

func TestConstruct_DoesNotModifyDataSet(t *testing.T) {
	ds := testDataSet(ExplicitVRLittleEndianUID)
	before := len(ds.Elements)
	constructBytes(t, ds)
	if len(ds.Elements) != before {
		t.Fatalf("got %d elements after Construct, want %d", len(ds.Elements), before)
	}
	if _, ok := ds.Elements[FileMetaInformationGroupLengthTag]; ok {
		t.Fatalf("expected Construct not to add %v to its input", FileMetaInformationGroupLengthTag)
	}
}

func TestConstruct_EncapsulatedPixelData(t *testing.T) {
	ds := testDataSet("1.2.840.10008.1.2.4.50")
	fragments := [][]byte{{}, {0xFF, 0xD8, 0xFF, 0xD9}, {0x01, 0x02, 0x03}}
	ds.Elements[PixelDataTag] = &DataElement{PixelDataTag, OBVR, NewBulkDataBuffer(fragments...), UndefinedLength}

	got, err := Parse(bytes.NewReader(constructBytes(t, ds)))
	if err != nil {
		t.Fatalf("Parse(_) => %v", err)
	}
	elem := got.Elements[PixelDataTag]
	if elem.ValueLength != UndefinedLength {
		t.Fatalf("got length %v, want undefined length", elem.ValueLength)
	}
	// odd fragments are padded to even length
	want := NewBulkDataBuffer([]byte{}, []byte{0xFF, 0xD8, 0xFF, 0xD9}, []byte{0x01, 0x02, 0x03, 0x00})
	compareDataElements(t, elem, &DataElement{PixelDataTag, OBVR, want, UndefinedLength})

	dropped, err := Parse(bytes.NewReader(constructBytes(t, ds)), DropBasicOffsetTable)
	if err != nil {
		t.Fatalf("Parse(_, DropBasicOffsetTable) => %v", err)
	}
	if n := len(dropped.Elements[PixelDataTag].ValueField.(BulkDataBuffer).Data()); n != 2 {
		t.Fatalf("got %d fragments, want 2", n)
	}
}

func TestConstruct_BigEndianWords(t *testing.T) {
	ds := testDataSet(ExplicitVRBigEndianUID)
	ds.Elements[PixelDataTag] = &DataElement{PixelDataTag, OWVR, NewBulkDataBuffer([]byte{0x01, 0x02, 0x03, 0x04}), 4}
	raw := constructBytes(t, ds)

	header := []byte{0x7F, 0xE0, 0x00, 0x10, 'O', 'W', 0x00, 0x00, 0x00, 0x00, 0x00, 0x04}
	i := bytes.Index(raw, header)
	if i < 0 {
		t.Fatalf("pixel data header %v not found", header)
	}
	if got, want := raw[i+len(header):i+len(header)+4], []byte{0x02, 0x01, 0x04, 0x03}; !bytes.Equal(got, want) {
		t.Fatalf("got value bytes %v, want %v", got, want)
	}

	got, err := Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse(_) => %v", err)
	}
	compareDataElements(t, got.Elements[PixelDataTag], ds.Elements[PixelDataTag])
}

func TestConstruct_WithTransform(t *testing.T) {
	anonymize := ConstructOptionWithTransform(func(elem *DataElement) (*DataElement, error) {
		switch elem.Tag {
		case PatientNameTag:
			return &DataElement{Tag: elem.Tag, VR: elem.VR, ValueField: []string{"ANONYMOUS"}}, nil
		case ReferencedSOPInstanceUIDTag:
			return nil, nil
		}
		return elem, nil
	})

	got, err := Parse(bytes.NewReader(constructBytes(t, testDataSet(ExplicitVRLittleEndianUID), anonymize)))
	if err != nil {
		t.Fatalf("Parse(_) => %v", err)
	}
	if name, _ := got.Elements[PatientNameTag].StringValue(); name != "ANONYMOUS" {
		t.Fatalf("got patient name %q, want %q", name, "ANONYMOUS")
	}
	item := got.Elements[ReferencedStudySequenceTag].ValueField.(*Sequence).Items[0]
	if _, ok := item.Elements[ReferencedSOPInstanceUIDTag]; ok {
		t.Fatalf("expected nested %v to be excluded", ReferencedSOPInstanceUIDTag)
	}
}

func TestConstruct_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ds      *DataSet
		wantErr string
	}{
		{
			"missing transfer syntax",
			NewDataSet(map[DataElementTag]interface{}{PatientNameTag: []string{"Doe^John"}}),
			"transfer syntax element is missing",
		},
		{
			"unbuffered value",
			NewDataSet(map[DataElementTag]interface{}{
				TransferSyntaxUIDTag: []string{ExplicitVRLittleEndianUID},
				PixelDataTag:         newOneShotIterator(bytes.NewReader([]byte{1, 2})),
			}),
			"must be collected before writing",
		},
		{
			"value too long for 16 bit length",
			NewDataSet(map[DataElementTag]interface{}{
				TransferSyntaxUIDTag: []string{ExplicitVRLittleEndianUID},
				PatientNameTag:       []string{strings.Repeat("a", 70000)},
			}),
			"exceeds unsigned 16-bit length",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Construct(&bytes.Buffer{}, tc.ds)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Construct(_, _) => %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}
