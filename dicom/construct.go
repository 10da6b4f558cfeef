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
	"io"

	"github.com/klauspost/compress/flate"
)

// ConstructOption configures how the Construct function behaves
type ConstructOption struct {
	transform Transform
}

// ConstructOptionWithTransform returns a construct option that applies the given transformation to
// each DataElement before it is written to the DICOM file. For sequence DataElements, the transform
// is applied to the parent DataElement first before being applied to its children
// (i.e. the transform is applied to DataElements in pre-order). Returning a nil DataElement
// excludes the element from the output.
//
// After all the ConstructOptions are applied to a DataElement, the length of the DataElement is
// re-calculated and VRs added from the DICOM data dictionary if the DataElement has a nil VR.
func ConstructOptionWithTransform(transform Transform) ConstructOption {
	return ConstructOption{transform: transform}
}

// Construct writes the given *DataSet as a DICOM file to the given io.Writer. The desired output
// transfer syntax is specified as a required TransferSyntax DataElement (0002,0010). By default,
// there is no validation against the DICOM standard of any form.
//
// If a *DataElement in the *DataSet is missing VR it will be filled in from the
// DICOM Data Dictionary. The ValueLength of DataElements are ignored and re-calculated, except for
// pixel data of undefined length which is written in the encapsulated format. The FileMetaInformationGroupLength
// is always re-calculated. The given DataSet is not modified.
func Construct(w io.Writer, dataSet *DataSet, opts ...ConstructOption) error {
	transformed, err := transformDataSet(dataSet, opts)
	if err != nil {
		return err
	}

	dataSetSyntax, err := findSyntaxFromDataSet(transformed)
	if err != nil {
		return fmt.Errorf("getting transfer syntax from data set: %v", err)
	}

	// The FileMetaInformationGroupLength element stores how long the meta header is, so it is
	// re-calculated from the elements actually written.
	metaGroupLengthElement, err := createMetaGroupLengthElement(transformed)
	if err != nil {
		return fmt.Errorf("creating meta group length element: %v", err)
	}
	transformed.Elements[FileMetaInformationGroupLengthTag] = metaGroupLengthElement

	meta := newDcmWriter(w, binary.LittleEndian)
	if err := writeDicomSignature(meta); err != nil {
		return err
	}

	// File meta elements are always in explicit VR little endian as specified in the standard
	// http://dicom.nema.org/medical/dicom/current/output/html/part10.html#sect_7.1
	if err := writeDataSet(meta, explicitVRLittleEndian, transformed.MetaElements()); err != nil {
		return fmt.Errorf("writing file meta elements: %v", err)
	}

	body := &DataSet{Elements: map[DataElementTag]*DataElement{}, Length: UndefinedLength}
	for tag, elem := range transformed.Elements {
		if !tag.IsMetaElement() {
			body.Elements[tag] = elem
		}
	}

	if dataSetSyntax.deflated {
		return writeDeflated(w, body)
	}
	if err := writeDataSet(newDcmWriter(w, dataSetSyntax.order), dataSetSyntax, body); err != nil {
		return fmt.Errorf("writing data set: %v", err)
	}
	return nil
}

func transformDataSet(dataSet *DataSet, opts []ConstructOption) (*DataSet, error) {
	out := &DataSet{Elements: map[DataElementTag]*DataElement{}, Length: dataSet.Length}
	for _, tag := range dataSet.SortedTags() {
		element := dataSet.Elements[tag]
		var err error
		for _, opt := range opts {
			element, err = opt.transform(element)
			if err != nil {
				return nil, fmt.Errorf("applying transform to %v: %v", tag, err)
			}
			if element == nil {
				break
			}
		}
		if element == nil {
			continue
		}

		if seq, ok := element.ValueField.(*Sequence); ok {
			items := make([]*DataSet, 0, len(seq.Items))
			for _, item := range seq.Items {
				transformedItem, err := transformDataSet(item, opts)
				if err != nil {
					return nil, err
				}
				items = append(items, transformedItem)
			}
			element = &DataElement{element.Tag, element.VR, &Sequence{Items: items}, element.ValueLength}
		}
		out.Elements[element.Tag] = element
	}
	return out, nil
}

func createMetaGroupLengthElement(dataSet *DataSet) (*DataElement, error) {
	// Please refer to the DICOM Standard Part 10 for information on the File Meta Information Group
	// Length. http://dicom.nema.org/medical/dicom/current/output/html/part10.html#sect_7.1

	size := uint32(0)
	for _, tag := range dataSet.SortedTags() {
		if tag == FileMetaInformationGroupLengthTag {
			// The Group Length stores the size of the meta elements following this tag.
			continue
		}
		if !tag.IsMetaElement() {
			continue
		}
		element := dataSet.Elements[tag]
		length, err := calculateValueLength(element)
		if err != nil {
			return nil, fmt.Errorf("calculating length of %v: %v", tag, err)
		}
		if length == UndefinedLength {
			return nil, fmt.Errorf("file meta element %v cannot have undefined length", tag)
		}
		size += explicitVRLittleEndian.elementSize(elementVR(element), length)
	}

	return &DataElement{
		Tag:         FileMetaInformationGroupLengthTag,
		VR:          ULVR,
		ValueField:  []uint32{size},
		ValueLength: 4,
	}, nil
}

func findSyntaxFromDataSet(dataSet *DataSet) (*transferSyntax, error) {
	syntaxElement, ok := dataSet.Elements[TransferSyntaxUIDTag]
	if !ok {
		return nil, fmt.Errorf("transfer syntax element is missing from data set")
	}

	syntaxUID, err := syntaxElement.StringValue()
	if err != nil {
		return nil, fmt.Errorf("transfer syntax element cannot be converted to string: %v", err)
	}
	return lookupTransferSyntax(syntaxUID), nil
}

func writeDicomSignature(dw *dcmWriter) error {
	if err := dw.raw(make([]byte, 128)); err != nil {
		return fmt.Errorf("writing DICOM preamble: %v", err)
	}
	if err := dw.raw([]byte("DICM")); err != nil {
		return fmt.Errorf("writing DICOM signature: %v", err)
	}
	return nil
}

// writeDeflated writes the data set compressed with raw deflate, as required by the deflated
// explicit VR little endian transfer syntax
func writeDeflated(w io.Writer, body *DataSet) error {
	fw, err := flate.NewWriter(w, flate.DefaultCompression)
	if err != nil {
		return fmt.Errorf("creating deflate writer: %v", err)
	}
	if err := writeDataSet(newDcmWriter(fw, binary.LittleEndian), deflatedExplicitVRLittleEndian, body); err != nil {
		return fmt.Errorf("writing deflated data set: %v", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("flushing deflated data set: %v", err)
	}
	return nil
}
