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

// Transfer syntax UIDs this package reads and writes without encapsulation
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
const (
	ImplicitVRLittleEndianUID         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndianUID         = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndianUID            = "1.2.840.10008.1.2.2"
	DeflatedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.99"
)

const (
	tagSize = 4
	vrSize  = 2
)

// transferSyntax describes how the data elements of a data set are encoded
type transferSyntax struct {
	name     string
	order    binary.ByteOrder
	implicit bool
	deflated bool
}

var (
	implicitVRLittleEndian         = &transferSyntax{name: "implicit vr little endian", order: binary.LittleEndian, implicit: true}
	explicitVRLittleEndian         = &transferSyntax{name: "explicit vr little endian", order: binary.LittleEndian}
	explicitVRBigEndian            = &transferSyntax{name: "explicit vr big endian", order: binary.BigEndian}
	deflatedExplicitVRLittleEndian = &transferSyntax{name: "deflated explicit vr little endian", order: binary.LittleEndian, deflated: true}
)

// lookupTransferSyntax maps a transfer syntax UID to its encoding. Every other syntax, the
// encapsulated ones included, encodes its data set in explicit VR little endian.
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
func lookupTransferSyntax(uid string) *transferSyntax {
	switch uid {
	case ImplicitVRLittleEndianUID:
		return implicitVRLittleEndian
	case ExplicitVRBigEndianUID:
		return explicitVRBigEndian
	case DeflatedExplicitVRLittleEndianUID:
		return deflatedExplicitVRLittleEndian
	default:
		return explicitVRLittleEndian
	}
}

func (s *transferSyntax) String() string {
	return s.name
}

func (s *transferSyntax) bigEndian() bool {
	return s.order == binary.BigEndian
}

// headerSize is the number of bytes between the start of an element and its value field
func (s *transferSyntax) headerSize(vr *VR) uint32 {
	switch {
	case s.implicit:
		return tagSize + 4
	case vr.longLength:
		return tagSize + vrSize + 2 + 4
	default:
		return tagSize + vrSize + 2
	}
}

// elementSize is the encoded size of an element with a value field of the given length
func (s *transferSyntax) elementSize(vr *VR, valueLength uint32) uint32 {
	if valueLength == UndefinedLength {
		return UndefinedLength
	}
	return s.headerSize(vr) + valueLength
}

// readHeader reads the VR and value length following the tag of an element. The implicit syntax
// takes the VR from the dictionary.
func (s *transferSyntax) readHeader(dr *dcmReader, tag DataElementTag) (*VR, uint32, error) {
	if s.implicit {
		length, err := dr.UInt32(s.order)
		if err != nil {
			return nil, 0, fmt.Errorf("reading length: %v", err)
		}
		return tag.DictionaryVR(), length, nil
	}

	name, err := dr.Bytes(vrSize)
	if err != nil {
		return nil, 0, fmt.Errorf("reading vr: %v", err)
	}
	vr, err := lookupVRByName(string(name))
	if err != nil {
		return nil, 0, err
	}
	if !vr.longLength {
		length, err := dr.UInt16(s.order)
		if err != nil {
			return nil, 0, fmt.Errorf("reading 16 bit length: %v", err)
		}
		return vr, uint32(length), nil
	}
	if err := dr.Skip(2); err != nil {
		return nil, 0, fmt.Errorf("reading reserved field: %v", err)
	}
	length, err := dr.UInt32(s.order)
	if err != nil {
		return nil, 0, fmt.Errorf("reading 32 bit length: %v", err)
	}
	return vr, length, nil
}

// writeHeader writes the tag, VR and value length of an element
func (s *transferSyntax) writeHeader(dw *dcmWriter, tag DataElementTag, vr *VR, valueLength uint32) error {
	if err := dw.tag(tag); err != nil {
		return err
	}
	if s.implicit {
		return dw.u32(valueLength)
	}
	if err := dw.raw([]byte(vr.Name)); err != nil {
		return err
	}
	if vr.longLength {
		if err := dw.u16(0); err != nil {
			return err
		}
		return dw.u32(valueLength)
	}
	if valueLength > math.MaxUint16 {
		return fmt.Errorf("value length %d of %v exceeds unsigned 16-bit length", valueLength, vr)
	}
	return dw.u16(uint16(valueLength))
}
