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
	"fmt"
	"math"
	"strings"
)

func writeDataSet(dw *dcmWriter, syntax *transferSyntax, ds *DataSet) error {
	for _, element := range ds.SortedElements() {
		if err := writeDataElement(dw, syntax, element); err != nil {
			return err
		}
	}
	return nil
}

// writeDataElement encodes element in syntax. A missing VR is taken from the dictionary and the
// value length is always recomputed.
func writeDataElement(dw *dcmWriter, syntax *transferSyntax, element *DataElement) error {
	vr := elementVR(element)

	switch v := element.ValueField.(type) {
	case *Sequence:
		if err := syntax.writeHeader(dw, element.Tag, vr, UndefinedLength); err != nil {
			return fmt.Errorf("writing header of %v: %v", element.Tag, err)
		}
		if err := writeSequence(dw, syntax, v); err != nil {
			return fmt.Errorf("writing sequence %v: %v", element.Tag, err)
		}
		return nil
	case BulkDataBuffer:
		if isEncapsulated(element) {
			if err := syntax.writeHeader(dw, element.Tag, vr, UndefinedLength); err != nil {
				return fmt.Errorf("writing header of %v: %v", element.Tag, err)
			}
			// fragments are little endian whatever the syntax
			if err := writeEncapsulatedFormat(newDcmWriter(dw.w, binary.LittleEndian), v.Data()); err != nil {
				return fmt.Errorf("writing fragments of %v: %v", element.Tag, err)
			}
			return nil
		}
	}

	value, err := encodeValue(element.ValueField, vr, syntax)
	if err != nil {
		return fmt.Errorf("encoding value of %v: %v", element.Tag, err)
	}
	if int64(len(value)) >= math.MaxUint32 {
		return fmt.Errorf("value length %d of %v exceeds the maximum of a data element", len(value), element.Tag)
	}
	if err := syntax.writeHeader(dw, element.Tag, vr, uint32(len(value))); err != nil {
		return fmt.Errorf("writing header of %v: %v", element.Tag, err)
	}
	if err := dw.raw(value); err != nil {
		return fmt.Errorf("writing value of %v: %v", element.Tag, err)
	}
	return nil
}

func elementVR(element *DataElement) *VR {
	if element.VR != nil {
		return element.VR
	}
	return element.Tag.DictionaryVR()
}

// isEncapsulated reports whether the element holds pixel data fragments in the encapsulated format
func isEncapsulated(element *DataElement) bool {
	return element.Tag == PixelDataTag && element.ValueLength == UndefinedLength
}

// calculateValueLength returns the length of the value field of element once written, padding
// included. Sequences and encapsulated pixel data have undefined length.
func calculateValueLength(element *DataElement) (uint32, error) {
	switch element.ValueField.(type) {
	case *Sequence:
		return UndefinedLength, nil
	case BulkDataBuffer:
		if isEncapsulated(element) {
			return UndefinedLength, nil
		}
	}
	value, err := encodeValue(element.ValueField, elementVR(element), explicitVRLittleEndian)
	if err != nil {
		return 0, err
	}
	return uint32(len(value)), nil
}

// encodeValue returns the padded value field of a value that is neither a sequence nor
// encapsulated pixel data
func encodeValue(value interface{}, vr *VR, syntax *transferSyntax) ([]byte, error) {
	var b []byte
	var err error
	switch v := value.(type) {
	case []string:
		b = []byte(strings.Join(v, "\\"))
	case BulkDataBuffer:
		b = bytes.Join(v.Data(), nil)
		if vr.swapsIn(syntax) {
			b = swapWords(b, vr.wordSize)
		}
	case []uint32:
		if vr == ATVR {
			b, err = encodeTags(v, syntax.order)
		} else {
			b, err = encodeNumbers(v, syntax.order)
		}
	case []uint16, []int16, []int32, []float32, []float64:
		b, err = encodeNumbers(v, syntax.order)
	case SequenceIterator, BulkDataIterator:
		return nil, fmt.Errorf("streamed value fields must be collected before writing, got %T", v)
	default:
		return nil, fmt.Errorf("unexpected ValueField type %T", value)
	}
	if err != nil {
		return nil, err
	}
	if len(b)%2 != 0 {
		b = append(b, paddingByte(vr))
	}
	return b, nil
}

// paddingByte returns the byte appended to odd length values
func paddingByte(vr *VR) byte {
	switch vr.kind {
	case textVR:
		return ' '
	case bulkDataVR:
		if vr == UCVR || vr == URVR || vr == UTVR {
			return ' '
		}
	}
	return 0x00
}

// writeSequence writes the items of seq with undefined length
func writeSequence(dw *dcmWriter, syntax *transferSyntax, seq *Sequence) error {
	for i, item := range seq.Items {
		if err := dw.item(ItemTag, UndefinedLength); err != nil {
			return fmt.Errorf("writing item %d: %v", i, err)
		}
		if err := writeDataSet(dw, syntax, item); err != nil {
			return fmt.Errorf("writing item %d: %v", i, err)
		}
		if err := dw.item(ItemDelimitationItemTag, 0); err != nil {
			return fmt.Errorf("writing item delimitation item: %v", err)
		}
	}
	if err := dw.item(SequenceDelimitationItemTag, 0); err != nil {
		return fmt.Errorf("writing sequence delimitation item: %v", err)
	}
	return nil
}
