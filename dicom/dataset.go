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
	"sort"
	"strconv"
	"strings"
)

// DataElementTag is a unique identifier for a Data Element composed of an unordered pair
// of numbers called the group number and the element number as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10.
//
// The least significant 16 bits is the element number. The most significant 16 bits is the group
// number.
type DataElementTag uint32

// GroupNumber returns the group number component of the DataElementTag
func (t DataElementTag) GroupNumber() uint16 {
	return uint16(t >> 16)
}

// ElementNumber returns the element number component of the DataElementTag
func (t DataElementTag) ElementNumber() uint16 {
	return uint16(t & 0xFFFF)
}

// IsMetaElement is true if and only if the Data Element belongs to the File Meta Information
// group (0002,xxxx)
func (t DataElementTag) IsMetaElement() bool {
	return t.GroupNumber() == 0x0002
}

// IsPrivate is true if and only if the group number is odd
func (t DataElementTag) IsPrivate() bool {
	return t.GroupNumber()%2 == 1
}

// IsPrivateCreator is true if the tag reserves a block of private elements, i.e. it has the form
// (gggg,0010-00FF) with gggg odd. See
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.8.1
func (t DataElementTag) IsPrivateCreator() bool {
	return t.IsPrivate() && t.ElementNumber() >= 0x0010 && t.ElementNumber() <= 0x00FF
}

func (t DataElementTag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.GroupNumber(), t.ElementNumber())
}

// DataElement models a DICOM Data Element as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
type DataElement struct {
	Tag DataElementTag

	// Value Representation
	VR *VR

	// ValueField represents the field within a Data Element that contains its value(s)
	// Can be any of of the following types:
	// []string,
	// []int16,
	// []uint16,
	// []int32,
	// []uint32,
	// []float32,
	// []float64
	// BulkDataBuffer
	// *Sequence
	// When read through a DataElementIterator it may also be a BulkDataIterator or a
	// SequenceIterator.
	ValueField interface{}

	// ValueLength is equal to the length of the ValueField in bytes.
	// Can be equal to 0xFFFFFFFF to represent an undefined length:
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
	ValueLength uint32
}

func (e *DataElement) String() string {
	return e.string(0)
}

func (e *DataElement) string(indentLvl int) string {
	prefix := strings.Repeat(">", indentLvl)
	vrName := "??"
	if e.VR != nil {
		vrName = e.VR.Name
	}
	if seq, ok := e.ValueField.(*Sequence); ok {
		return fmt.Sprintf("%s%s %s #%d %s", prefix, e.Tag, vrName, e.ValueLength, seq.string(indentLvl))
	}
	return fmt.Sprintf("%s%s %s #%d %v", prefix, e.Tag, vrName, e.ValueLength, e.ValueField)
}

// StringValue returns the first value of a textual DataElement
func (e *DataElement) StringValue() (string, error) {
	strs, ok := e.ValueField.([]string)
	if !ok {
		return "", fmt.Errorf("expected []string, got %T", e.ValueField)
	}
	if len(strs) == 0 {
		return "", fmt.Errorf("no values found in data element %v", e.Tag)
	}
	return strs[0], nil
}

// IntValue returns the first value of a DataElement holding binary integers or integer strings
func (e *DataElement) IntValue() (int64, error) {
	switch v := e.ValueField.(type) {
	case []int16:
		if len(v) > 0 {
			return int64(v[0]), nil
		}
	case []uint16:
		if len(v) > 0 {
			return int64(v[0]), nil
		}
	case []int32:
		if len(v) > 0 {
			return int64(v[0]), nil
		}
	case []uint32:
		if len(v) > 0 {
			return int64(v[0]), nil
		}
	case []string:
		if len(v) > 0 {
			return strconv.ParseInt(strings.TrimSpace(v[0]), 10, 64)
		}
	default:
		return 0, fmt.Errorf("value field of type %T is not an integer", e.ValueField)
	}
	return 0, fmt.Errorf("no values found in data element %v", e.Tag)
}

// Bytes returns the value field as it would appear in a little endian file, without padding.
// Textual values are joined with the "\" delimiter, binary numbers are encoded in little endian
// and bulk data fragments are concatenated.
func (e *DataElement) Bytes() ([]byte, error) {
	switch v := e.ValueField.(type) {
	case []string:
		return []byte(strings.Join(v, "\\")), nil
	case []int16, []uint16, []int32, []uint32, []float32, []float64:
		return encodeNumbers(v, binary.LittleEndian)
	case BulkDataBuffer:
		return bytes.Join(v.Data(), nil), nil
	default:
		return nil, fmt.Errorf("value field of type %T has no byte representation", e.ValueField)
	}
}

// DataSet models a DICOM Data Set as defined
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
type DataSet struct {
	// Elements is a map of DataElement tags to *DataElement
	Elements map[DataElementTag]*DataElement

	// Length is the number of bytes of the data set when it is a sequence item. It is
	// UndefinedLength for top level data sets and items of undefined length.
	Length uint32
}

// NewDataSet creates a DataSet from a map of tags to ValueFields. VRs are looked up in the
// data dictionary and ValueLengths are computed when the DataSet is written.
func NewDataSet(elements map[DataElementTag]interface{}) *DataSet {
	ds := &DataSet{Elements: map[DataElementTag]*DataElement{}, Length: UndefinedLength}
	for tag, value := range elements {
		ds.Elements[tag] = &DataElement{Tag: tag, VR: tag.DictionaryVR(), ValueField: value}
	}
	return ds
}

// Merge copies all elements of other into the DataSet, replacing elements with equal tags.
// The DataSet is returned to allow chaining.
func (ds *DataSet) Merge(other *DataSet) *DataSet {
	for tag, elem := range other.Elements {
		ds.Elements[tag] = elem
	}
	return ds
}

// Remove deletes the element with the given tag. It reports whether an element was removed.
func (ds *DataSet) Remove(tag DataElementTag) bool {
	if _, ok := ds.Elements[tag]; !ok {
		return false
	}
	delete(ds.Elements, tag)
	return true
}

// SortedTags returns the tags of the DataSet in ascending order
func (ds *DataSet) SortedTags() []DataElementTag {
	tags := make([]DataElementTag, 0, len(ds.Elements))
	for tag := range ds.Elements {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// SortedElements returns the elements of the DataSet in ascending order of tags
func (ds *DataSet) SortedElements() []*DataElement {
	elems := make([]*DataElement, 0, len(ds.Elements))
	for _, tag := range ds.SortedTags() {
		elems = append(elems, ds.Elements[tag])
	}
	return elems
}

// MetaElements returns a DataSet containing only the File Meta Information elements
func (ds *DataSet) MetaElements() *DataSet {
	meta := &DataSet{Elements: map[DataElementTag]*DataElement{}, Length: UndefinedLength}
	for tag, elem := range ds.Elements {
		if tag.IsMetaElement() {
			meta.Elements[tag] = elem
		}
	}
	return meta
}

func (ds *DataSet) String() string {
	return ds.string(0)
}

func (ds *DataSet) string(indentLvl int) string {
	lines := make([]string, 0, len(ds.Elements))
	for _, elem := range ds.SortedElements() {
		lines = append(lines, elem.string(indentLvl))
	}
	return strings.Join(lines, "\n")
}
