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
	"fmt"
)

// vrKind selects how a value field is decoded
type vrKind int

const (
	// textVR values are backslash separated strings padded with spaces
	textVR vrKind = iota
	// uniqueIdentifierVR values are padded with a null byte
	uniqueIdentifierVR
	// numberBinaryVR values are decoded into typed slices in the byte order of the syntax
	numberBinaryVR
	// bulkDataVR values are kept as bytes
	bulkDataVR
	sequenceVR
	// tagVR values are group/element pairs
	tagVR
)

// UndefinedLength marks a value whose end is found by a delimitation item
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
const UndefinedLength = 0xffffffff

// VR is a DICOM value representation
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
type VR struct {
	// Name is the 2 character code of the VR
	Name string

	kind vrKind

	// wordSize is the number of bytes of a single value of a binary VR. Bulk data of VRs with a
	// wordSize above 1 is byte swapped between little and big endian syntaxes.
	wordSize int

	// longLength VRs use 2 reserved bytes and a 32-bit length in the explicit VR syntaxes
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.2
	longLength bool
}

func (vr *VR) String() string {
	return vr.Name
}

// swapsIn reports whether bulk data of the VR changes byte order when stored in a syntax with the
// given byte order. Bulk data is held in little endian.
func (vr *VR) swapsIn(s *transferSyntax) bool {
	return vr.kind == bulkDataVR && vr.wordSize > 1 && s.bigEndian()
}

// Value representations of PS3.5 table 6.2-1 known to this package
var (
	AEVR = &VR{Name: "AE", kind: textVR, wordSize: 1}
	ASVR = &VR{Name: "AS", kind: textVR, wordSize: 1}
	CSVR = &VR{Name: "CS", kind: textVR, wordSize: 1}
	DAVR = &VR{Name: "DA", kind: textVR, wordSize: 1}
	DSVR = &VR{Name: "DS", kind: textVR, wordSize: 1}
	DTVR = &VR{Name: "DT", kind: textVR, wordSize: 1}
	ISVR = &VR{Name: "IS", kind: textVR, wordSize: 1}
	LOVR = &VR{Name: "LO", kind: textVR, wordSize: 1}
	LTVR = &VR{Name: "LT", kind: textVR, wordSize: 1}
	PNVR = &VR{Name: "PN", kind: textVR, wordSize: 1}
	SHVR = &VR{Name: "SH", kind: textVR, wordSize: 1}
	STVR = &VR{Name: "ST", kind: textVR, wordSize: 1}
	TMVR = &VR{Name: "TM", kind: textVR, wordSize: 1}
	UIVR = &VR{Name: "UI", kind: uniqueIdentifierVR, wordSize: 1}

	SSVR = &VR{Name: "SS", kind: numberBinaryVR, wordSize: 2}
	USVR = &VR{Name: "US", kind: numberBinaryVR, wordSize: 2}
	SLVR = &VR{Name: "SL", kind: numberBinaryVR, wordSize: 4}
	ULVR = &VR{Name: "UL", kind: numberBinaryVR, wordSize: 4}
	FLVR = &VR{Name: "FL", kind: numberBinaryVR, wordSize: 4}
	FDVR = &VR{Name: "FD", kind: numberBinaryVR, wordSize: 8}
	ATVR = &VR{Name: "AT", kind: tagVR, wordSize: 2}

	OBVR = &VR{Name: "OB", kind: bulkDataVR, wordSize: 1, longLength: true}
	OWVR = &VR{Name: "OW", kind: bulkDataVR, wordSize: 2, longLength: true}
	OLVR = &VR{Name: "OL", kind: bulkDataVR, wordSize: 4, longLength: true}
	OFVR = &VR{Name: "OF", kind: bulkDataVR, wordSize: 4, longLength: true}
	ODVR = &VR{Name: "OD", kind: bulkDataVR, wordSize: 8, longLength: true}
	// the byte order of UN values is unknown, they are never swapped
	UNVR = &VR{Name: "UN", kind: bulkDataVR, wordSize: 1, longLength: true}
	UCVR = &VR{Name: "UC", kind: bulkDataVR, wordSize: 1, longLength: true}
	URVR = &VR{Name: "UR", kind: bulkDataVR, wordSize: 1, longLength: true}
	UTVR = &VR{Name: "UT", kind: bulkDataVR, wordSize: 1, longLength: true}

	SQVR = &VR{Name: "SQ", kind: sequenceVR, wordSize: 1, longLength: true}
)

var vrsByName = func() map[string]*VR {
	m := map[string]*VR{}
	for _, vr := range []*VR{
		AEVR, ASVR, CSVR, DAVR, DSVR, DTVR, ISVR, LOVR, LTVR, PNVR, SHVR, STVR, TMVR, UIVR,
		SSVR, USVR, SLVR, ULVR, FLVR, FDVR, ATVR,
		OBVR, OWVR, OLVR, OFVR, ODVR, UNVR, UCVR, URVR, UTVR,
		SQVR,
	} {
		m[vr.Name] = vr
	}
	return m
}()

func lookupVRByName(name string) (*VR, error) {
	vr, ok := vrsByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown vr name: %q", name)
	}
	return vr, nil
}
