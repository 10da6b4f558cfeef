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

	"github.com/klauspost/compress/flate"
)

// DataElementIterator represents an iterator over a DataSet's DataElements
type DataElementIterator interface {
	// Next returns the next DataElement in the DataSet. If there is no next DataElement, the
	// error io.EOF is returned. In addition, if any previously returned DataElements contained
	// iterable objects like SequenceIterator, BulkDataIterator, these iterators are emptied.
	Next() (*DataElement, error)

	// Close discards all remaining DataElements in the iterator
	Close() error
}

// NewDataElementIterator creates a DataElementIterator from a DICOM file. The implementation
// returned will consume input from the io.Reader given as needed. File meta elements are returned
// first, followed by the elements of the data set in the order they appear in the file.
func NewDataElementIterator(r io.Reader) (DataElementIterator, error) {
	dr := newDcmReader(r)
	if err := readDicomSignature(dr); err != nil {
		return nil, err
	}

	metaHeaderBytes, err := bufferMetadataHeader(dr)
	if err != nil {
		return nil, fmt.Errorf("reading meta header: %v", err)
	}

	syntax, err := findSyntax(metaHeaderBytes)
	if err != nil {
		return nil, fmt.Errorf("finding transfer syntax: %v", err)
	}

	if syntax.deflated {
		// Only the data set following the meta header is deflated
		// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.5
		dr = newDcmReader(flate.NewReader(dr.r))
	}

	metaIter := newDataElementIterator(newDcmReader(bytes.NewReader(metaHeaderBytes)), explicitVRLittleEndian)
	return &dataElementIterator{dr: dr, ts: syntax, metaHeader: metaIter}, nil
}

// newDataElementIterator creates a DataElementIterator from a byte stream that excludes header info
// (preamble and metadata elements)
func newDataElementIterator(dr *dcmReader, syntax *transferSyntax) DataElementIterator {
	return &dataElementIterator{dr: dr, ts: syntax, metaHeader: emptyElementIterator{}}
}

type dataElementIterator struct {
	dr             *dcmReader
	ts             *transferSyntax
	currentElement *DataElement
	empty          bool
	metaHeader     DataElementIterator
}

func (it *dataElementIterator) Next() (*DataElement, error) {
	metaElem, err := it.metaHeader.Next()
	if err == io.EOF {
		return it.nextDataSetElement()
	}
	if err != nil {
		return nil, err
	}
	return metaElem, nil
}

func (it *dataElementIterator) nextDataSetElement() (*DataElement, error) {
	if it.empty {
		return nil, io.EOF
	}
	if err := it.closeCurrent(); err != nil {
		return nil, fmt.Errorf("closing previous element: %v", err)
	}

	element, err := readDataElement(it.dr, it.ts)
	if err == io.EOF {
		it.empty = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading element: %v", err)
	}

	it.currentElement = element
	return element, nil
}

func (it *dataElementIterator) Close() error {
	for _, err := it.Next(); err != io.EOF; _, err = it.Next() {
		if err != nil {
			return fmt.Errorf("unexpected error closing iterator: %v", err)
		}
	}
	return nil
}

// closeCurrent ensures the iterator is ready to read the next DataElement. If this iterator
// previously returned a stream of bytes such as a BulkDataIterator, the stream is emptied in order
// to advance the input to the bytes of the next DataElement. This pattern is similar to the
// implementation of multipart.Reader in the go standard library.
func (it *dataElementIterator) closeCurrent() error {
	if it.currentElement == nil {
		return nil
	}
	if closer, ok := it.currentElement.ValueField.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func readDicomSignature(dr *dcmReader) error {
	if err := dr.Skip(128); err != nil {
		return fmt.Errorf("skipping preamble: %v", err)
	}

	magic, err := dr.String(4)
	if err != nil {
		return fmt.Errorf("reading DICOM signature: %v", err)
	}
	if magic != "DICM" {
		return fmt.Errorf("wrong DICOM signature: %q", magic)
	}
	return nil
}

const maxMetaHeaderLength = 1 << 20

// bufferMetadataHeader reads the FileMetaInformationGroupLength element and the file meta elements
// it covers into memory
func bufferMetadataHeader(dr *dcmReader) ([]byte, error) {
	firstElemBytes, err := dr.Bytes(tagSize + vrSize + 2 /*len*/ + 4 /*UL*/)
	if err != nil {
		return nil, fmt.Errorf("buffering bytes of FileMetaInformationGroupLength: %v", err)
	}
	firstElem, err := readDataElement(newDcmReader(bytes.NewReader(firstElemBytes)), explicitVRLittleEndian)
	if err != nil {
		return nil, fmt.Errorf("reading FileMetaInformationGroupLength element: %v", err)
	}
	if firstElem.Tag != FileMetaInformationGroupLengthTag {
		return nil, fmt.Errorf("expected %v as first element, got %v", FileMetaInformationGroupLengthTag, firstElem.Tag)
	}

	metaGroupLength, err := firstElem.IntValue()
	if err != nil {
		return nil, fmt.Errorf("reading FileMetaInformationGroupLength: %v", err)
	}
	if metaGroupLength < 0 || metaGroupLength > maxMetaHeaderLength {
		return nil, fmt.Errorf("implausible FileMetaInformationGroupLength %d", metaGroupLength)
	}
	remainderBytes, err := dr.Bytes(metaGroupLength)
	if err != nil {
		return nil, fmt.Errorf("buffering the file meta elements: %v", err)
	}
	return append(firstElemBytes, remainderBytes...), nil
}

func findSyntax(metaHeaderBytes []byte) (*transferSyntax, error) {
	metaIter := newDataElementIterator(newDcmReader(bytes.NewReader(metaHeaderBytes)), explicitVRLittleEndian)
	for elem, err := metaIter.Next(); err != io.EOF; elem, err = metaIter.Next() {
		if err != nil {
			return nil, fmt.Errorf("reading meta element: %v", err)
		}
		if elem.Tag == TransferSyntaxUIDTag {
			uid, err := elem.StringValue()
			if err != nil {
				return nil, fmt.Errorf("reading transfer syntax uid: %v", err)
			}
			return lookupTransferSyntax(uid), nil
		}
	}
	return nil, fmt.Errorf("transfer syntax not found")
}

type emptyElementIterator struct{}

func (emptyElementIterator) Next() (*DataElement, error) {
	return nil, io.EOF
}

func (emptyElementIterator) Close() error {
	return nil
}
