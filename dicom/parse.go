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
	"io"
)

// Parse parses a DICOM file represented as an io.Reader, returning the DataSet defined by applying
// options sequentially in the order given to DataElements in the file.
//
// BulkDataIterators are buffered into BulkDataBuffers and SequenceIterators into *Sequence.
func Parse(r io.Reader, opts ...ParseOption) (*DataSet, error) {
	iter, err := NewDataElementIterator(r)
	if err != nil {
		return nil, fmt.Errorf("creating new data element iterator: %v", err)
	}
	return CollectDataElements(iter, opts...)
}

// CollectDataElements returns the DataSet defined by the elements in the DataElementIterator.
// The options will be applied in the order given. The DataElementIterator will be closed.
func CollectDataElements(iter DataElementIterator, opts ...ParseOption) (*DataSet, error) {
	defer iter.Close()

	ds := &DataSet{Elements: map[DataElementTag]*DataElement{}, Length: UndefinedLength}
	for elem, err := iter.Next(); err != io.EOF; elem, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		processed, err := processElement(elem, opts...)
		if err != nil {
			return nil, fmt.Errorf("processing %v: %v", elem.Tag, err)
		}
		if processed != nil { // a ParseOption filtered out the element
			ds.Elements[processed.Tag] = processed
		}
	}
	return ds, nil
}

// CollectSequence returns the Sequence defined by the items in the SequenceIterator.
// The options will be applied in the order given. The SequenceIterator will be closed.
func CollectSequence(iter SequenceIterator, opts ...ParseOption) (*Sequence, error) {
	defer iter.Close()

	seq := &Sequence{Items: []*DataSet{}}
	for item, err := iter.Next(); err != io.EOF; item, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		dataSet, err := CollectDataElements(item, opts...)
		if err != nil {
			return nil, err
		}
		seq.append(dataSet)
	}
	return seq, nil
}

// CollectFragments returns the byte fragments of the BulkDataIterator. The BulkDataIterator will
// be closed.
func CollectFragments(iter BulkDataIterator) ([][]byte, error) {
	defer iter.Close()

	fragments := make([][]byte, 0)
	for r, err := iter.Next(); err != io.EOF; r, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		fragment, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading fragment: %v", err)
		}
		fragments = append(fragments, fragment)
	}
	return fragments, nil
}

func processElement(element *DataElement, opts ...ParseOption) (*DataElement, error) {
	// sequences are processed in post-order: items are collected before options see the parent
	switch v := element.ValueField.(type) {
	case SequenceIterator:
		seq, err := CollectSequence(v, opts...)
		if err != nil {
			return nil, fmt.Errorf("collecting sequence: %v", err)
		}
		element = &DataElement{element.Tag, element.VR, seq, element.ValueLength}
	case BulkDataIterator:
		buffered, err := bufferBulkData(element, v)
		if err != nil {
			return nil, err
		}
		element = buffered
	}

	return applyOptions(element, opts...)
}

func bufferBulkData(element *DataElement, iter BulkDataIterator) (*DataElement, error) {
	fragments, err := CollectFragments(iter)
	if err != nil {
		return nil, fmt.Errorf("buffering fragments: %v", err)
	}
	buffer := NewBulkDataBuffer(fragments...)
	if element.ValueLength != UndefinedLength && buffer.Length() != int64(element.ValueLength) {
		return nil, fmt.Errorf("truncated value: got %d bytes, want %d", buffer.Length(), element.ValueLength)
	}
	return &DataElement{element.Tag, element.VR, buffer, element.ValueLength}, nil
}

func applyOptions(element *DataElement, opts ...ParseOption) (*DataElement, error) {
	var err error
	for i, opt := range opts {
		element, err = opt.transform(element)
		if err != nil {
			return nil, fmt.Errorf("applying option %v: %v", i, err)
		}
		if element == nil {
			return nil, nil
		}
	}
	return element, nil
}
