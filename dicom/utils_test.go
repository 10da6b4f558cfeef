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
	"reflect"
	"testing"
)

func dcmReaderFromBytes(data []byte) *dcmReader {
	return newDcmReader(bytes.NewBuffer(data))
}

func createSingletonSequence(elements ...*DataElement) *Sequence {
	ds := &DataSet{Elements: map[DataElementTag]*DataElement{}, Length: UndefinedLength}
	for _, elem := range elements {
		ds.Elements[elem.Tag] = elem
	}
	return &Sequence{Items: []*DataSet{ds}}
}

// testDataSet returns a data set exercising every kind of VR written in the given transfer syntax
func testDataSet(syntaxUID string) *DataSet {
	nested := createSingletonSequence(
		&DataElement{Tag: ReferencedSOPClassUIDTag, VR: UIVR, ValueField: []string{"1.2.840.10008.5.1.4.1.1.2"}},
		&DataElement{Tag: ReferencedSOPInstanceUIDTag, VR: UIVR, ValueField: []string{"1.2.3.4.5"}},
	)
	return NewDataSet(map[DataElementTag]interface{}{
		FileMetaInformationVersionTag: NewBulkDataBuffer([]byte{0, 1}),
		MediaStorageSOPClassUIDTag:    []string{"1.2.840.10008.5.1.4.1.1.2"},
		MediaStorageSOPInstanceUIDTag: []string{"1.2.3.4.5.6"},
		TransferSyntaxUIDTag:          []string{syntaxUID},
		ImplementationClassUIDTag:     []string{"1.2.3.4"},
		SOPClassUIDTag:                []string{"1.2.840.10008.5.1.4.1.1.2"},
		SOPInstanceUIDTag:             []string{"1.2.3.4.5.6"},
		ImageTypeTag:                  []string{"ORIGINAL", "PRIMARY", "AXIAL"},
		ModalityTag:                   []string{"CT"},
		ReferencedStudySequenceTag:    nested,
		PatientNameTag:                []string{"Doe^John"},
		RowsTag:                       []uint16{2},
		ColumnsTag:                    []uint16{2},
		PixelDataTag:                  NewBulkDataBuffer([]byte{0x11, 0x11, 0x22, 0x22, 0x33, 0x33, 0x44, 0x44}),
	})
}

func constructBytes(t *testing.T, ds *DataSet, opts ...ConstructOption) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := Construct(buf, ds, opts...); err != nil {
		t.Fatalf("Construct(_, _) => %v", err)
	}
	return buf.Bytes()
}

// compareDataSets fails the test if the data sets differ in anything but value lengths and group
// length elements
func compareDataSets(t *testing.T, got *DataSet, want *DataSet) {
	t.Helper()
	gotTags, wantTags := nonGroupLengthTags(got), nonGroupLengthTags(want)
	if !reflect.DeepEqual(gotTags, wantTags) {
		t.Fatalf("expected data sets to have same tags: got %v, want %v", gotTags, wantTags)
	}
	for _, tag := range gotTags {
		compareDataElements(t, got.Elements[tag], want.Elements[tag])
	}
}

func compareDataElements(t *testing.T, got *DataElement, want *DataElement) {
	t.Helper()
	wantVR := want.VR
	if wantVR == nil {
		wantVR = want.Tag.DictionaryVR()
	}
	if got.VR != wantVR {
		t.Fatalf("%v: got VR %v, want %v", got.Tag, got.VR, wantVR)
	}
	if wantSeq, ok := want.ValueField.(*Sequence); ok {
		gotSeq, ok := got.ValueField.(*Sequence)
		if !ok {
			t.Fatalf("%v: got value of type %T, want *Sequence", got.Tag, got.ValueField)
		}
		if len(gotSeq.Items) != len(wantSeq.Items) {
			t.Fatalf("%v: got %d items, want %d", got.Tag, len(gotSeq.Items), len(wantSeq.Items))
		}
		for i := range gotSeq.Items {
			compareDataSets(t, gotSeq.Items[i], wantSeq.Items[i])
		}
		return
	}
	if !reflect.DeepEqual(got.ValueField, want.ValueField) {
		t.Fatalf("%v: got %v, want %v", got.Tag, got.ValueField, want.ValueField)
	}
}

func nonGroupLengthTags(ds *DataSet) []DataElementTag {
	tags := []DataElementTag{}
	for _, tag := range ds.SortedTags() {
		if tag.ElementNumber() != 0 {
			tags = append(tags, tag)
		}
	}
	return tags
}
