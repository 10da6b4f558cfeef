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
	"fmt"
	"io"
	"strings"
)

// readDataElement reads the next element of a data set. io.EOF is returned at the end of the input
// and at the item delimitation item closing a sequence item of undefined length.
func readDataElement(dr *dcmReader, syntax *transferSyntax) (*DataElement, error) {
	tag, err := dr.Tag(syntax.order)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading tag: %v", err)
	}
	if tag == ItemDelimitationItemTag {
		if err := readDelimiterLength(dr, syntax, tag); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	vr, length, err := syntax.readHeader(dr, tag)
	if err != nil {
		return nil, fmt.Errorf("reading header of %v: %v", tag, err)
	}

	// UN of undefined length holds a sequence in implicit VR little endian
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2.2
	if vr == UNVR && length == UndefinedLength && tag != PixelDataTag {
		return &DataElement{tag, SQVR, newSequenceIterator(dr, length, implicitVRLittleEndian), length}, nil
	}

	value, err := readValue(tag, dr, vr, length, syntax)
	if err != nil {
		return nil, fmt.Errorf("reading value of %v: %v", tag, err)
	}
	return &DataElement{tag, vr, value, length}, nil
}

// readDelimiterLength consumes the zero length following a delimitation item tag
func readDelimiterLength(dr *dcmReader, syntax *transferSyntax, tag DataElementTag) error {
	length, err := dr.UInt32(syntax.order)
	if err != nil {
		return fmt.Errorf("reading length of %v: %v", tag, err)
	}
	if length != 0 {
		return fmt.Errorf("wrong length for %v: got %d, want 0", tag, length)
	}
	return nil
}

// readValue reads the value field of an element. Sequences and bulk data are returned as iterators
// over the input, every other value is decoded.
func readValue(tag DataElementTag, dr *dcmReader, vr *VR, length uint32, syntax *transferSyntax) (interface{}, error) {
	switch vr.kind {
	case sequenceVR:
		return newSequenceIterator(dr, length, syntax), nil
	case bulkDataVR:
		return readBulkData(dr, tag, vr, length, syntax)
	}

	if length == UndefinedLength {
		return nil, fmt.Errorf("undefined length is not allowed for vr %v", vr)
	}
	b, err := dr.Bytes(int64(length))
	if err != nil {
		return nil, fmt.Errorf("reading %d bytes: %v", length, err)
	}
	switch vr.kind {
	case textVR:
		return splitText(string(b), vr, " "), nil
	case uniqueIdentifierVR:
		return splitText(string(b), vr, " \x00"), nil
	case numberBinaryVR:
		return decodeNumbers(b, vr, syntax.order)
	case tagVR:
		return decodeTags(b, syntax.order)
	}
	return nil, fmt.Errorf("unknown vr kind: %v", vr.kind)
}

// splitText splits a textual value into its values and strips the padding characters in cutset.
// ST and LT hold a single value and keep their leading spaces.
func splitText(s string, vr *VR, cutset string) []string {
	if s == "" {
		return []string{}
	}
	if vr == STVR || vr == LTVR {
		return []string{strings.TrimRight(s, cutset)}
	}
	values := strings.Split(s, "\\")
	for i, v := range values {
		values[i] = strings.Trim(v, cutset)
	}
	return values
}

func readBulkData(dr *dcmReader, tag DataElementTag, vr *VR, length uint32, syntax *transferSyntax) (BulkDataIterator, error) {
	if length == UndefinedLength {
		// (7FE0,0010) of undefined length holds encapsulated pixel data
		// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
		if tag != PixelDataTag {
			return nil, fmt.Errorf("undefined length is only supported for %v", PixelDataTag)
		}
		return newEncapsulatedFormatIterator(dr), nil
	}
	if !vr.swapsIn(syntax) {
		return newOneShotIterator(dr.Limit(int64(length)).r), nil
	}

	// big endian words are swapped to the little endian order bulk data is held in
	b, err := dr.Bytes(int64(length))
	if err != nil {
		return nil, fmt.Errorf("truncated value: %v", err)
	}
	return newOneShotIterator(bytes.NewReader(swapWords(b, vr.wordSize))), nil
}
