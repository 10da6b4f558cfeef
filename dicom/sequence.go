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
	"strings"
)

// Sequence models a DICOM sequence
type Sequence struct {
	Items []*DataSet
}

func (seq *Sequence) String() string {
	return seq.string(0)
}

func (seq *Sequence) string(indentLvl int) string {
	var b strings.Builder
	for _, item := range seq.Items {
		b.WriteString("\n")
		b.WriteString(item.string(indentLvl + 1))
	}
	return b.String()
}

func (seq *Sequence) append(dataSet *DataSet) {
	seq.Items = append(seq.Items, dataSet)
}

// SequenceIterator is an iterator over a DICOM Sequence of Items in the order in which they appear
// in the DICOM file.
type SequenceIterator interface {
	// Next returns the next item in the DICOM Sequence of Items. If there is no next item, the error
	// io.EOF is returned. In addition, any previously returned iterators from Next are emptied.
	Next() (DataElementIterator, error)

	// Close discards all remaining items in the iterator. In addition, any previously returned
	// iterators from calls to Next are emptied.
	Close() error
}

// sequenceIterator reads the items of a sequence. A sequence of defined length ends with its
// limited input, one of undefined length with a sequence delimitation item.
type sequenceIterator struct {
	dr        *dcmReader
	syntax    *transferSyntax
	delimited bool
	item      DataElementIterator
	done      bool
}

func newSequenceIterator(dr *dcmReader, length uint32, syntax *transferSyntax) SequenceIterator {
	if length == UndefinedLength {
		return &sequenceIterator{dr: dr, syntax: syntax, delimited: true}
	}
	return &sequenceIterator{dr: dr.Limit(int64(length)), syntax: syntax}
}

func (it *sequenceIterator) Next() (DataElementIterator, error) {
	if it.done {
		return nil, io.EOF
	}
	if it.item != nil {
		if err := it.item.Close(); err != nil {
			return nil, fmt.Errorf("closing sequence item: %v", err)
		}
		it.item = nil
	}

	tag, length, err := readItemHeader(it.dr, it.syntax.order)
	switch {
	case err == io.EOF && it.delimited:
		return nil, fmt.Errorf("unexpected EOF in sequence of undefined length")
	case err == io.EOF:
		it.done = true
		return nil, io.EOF
	case err != nil:
		return nil, err
	}

	switch tag {
	case SequenceDelimitationItemTag:
		if !it.delimited {
			return nil, fmt.Errorf("unexpected %v in sequence of defined length", tag)
		}
		if length != 0 {
			return nil, fmt.Errorf("expected 0 length on sequence delimiter, got %d", length)
		}
		it.done = true
		return nil, io.EOF
	case ItemTag:
		if length == UndefinedLength {
			it.item = newDataElementIterator(it.dr, it.syntax)
		} else {
			it.item = newDataElementIterator(it.dr.Limit(int64(length)), it.syntax)
		}
		return it.item, nil
	default:
		return nil, fmt.Errorf("invalid item tag in sequence: got %v, want %v or %v",
			tag, ItemTag, SequenceDelimitationItemTag)
	}
}

func (it *sequenceIterator) Close() error {
	for _, err := it.Next(); err != io.EOF; _, err = it.Next() {
		if err != nil {
			return err
		}
	}
	return nil
}

// readItemHeader reads the tag and 32-bit length of an item or delimitation item. io.EOF is only
// returned when the input ends before the tag.
func readItemHeader(dr *dcmReader, order binary.ByteOrder) (DataElementTag, uint32, error) {
	tag, err := dr.Tag(order)
	if err == io.EOF {
		return 0, 0, io.EOF
	}
	if err != nil {
		return 0, 0, fmt.Errorf("reading item tag: %v", err)
	}
	length, err := dr.UInt32(order)
	if err != nil {
		return 0, 0, fmt.Errorf("reading length of %v: %v", tag, err)
	}
	return tag, length, nil
}
