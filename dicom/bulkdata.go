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
)

// BulkDataReader represents a streamable contiguous sequence of bytes within a file
type BulkDataReader struct {
	io.Reader
}

// Close discards all bytes in the reader
func (r *BulkDataReader) Close() error {
	_, err := io.Copy(io.Discard, r)
	return err
}

// BulkDataIterator represents a sequence of BulkDataReaders.
type BulkDataIterator interface {
	// Next returns the next BulkDataReader in the iterator and discards all bytes from all previous
	// BulkDataReaders returned from Next. If there are no remaining BulkDataReader in the iterator,
	// the error io.EOF is returned
	Next() (*BulkDataReader, error)

	// Close discards all remaining BulkDataReaders in the iterator. Any previously returned
	// BulkDataReaders from calls to Next are also emptied.
	Close() error
}

// BulkDataBuffer is the buffered form of a BulkDataIterator. Native values hold exactly one
// fragment. Encapsulated pixel data holds the basic offset table followed by one entry per
// fragment.
//
// Values of the OW, OL, OF and OD VRs are held in little endian whatever the byte order of the
// file they were read from or are written to.
type BulkDataBuffer interface {
	// Data returns the fragments of the buffer
	Data() [][]byte

	// Length returns the total number of bytes over all fragments
	Length() int64
}

type bulkDataBuffer struct {
	fragments [][]byte
}

// NewBulkDataBuffer creates a BulkDataBuffer from fragments
func NewBulkDataBuffer(fragments ...[]byte) BulkDataBuffer {
	return &bulkDataBuffer{fragments}
}

func (b *bulkDataBuffer) Data() [][]byte {
	return b.fragments
}

func (b *bulkDataBuffer) Length() int64 {
	n := int64(0)
	for _, f := range b.fragments {
		n += int64(len(f))
	}
	return n
}

func (b *bulkDataBuffer) String() string {
	return fmt.Sprintf("<%d bytes in %d fragments>", b.Length(), len(b.fragments))
}

// oneShotIterator is a BulkDataIterator that contains exactly one BulkDataReader
type oneShotIterator struct {
	r     *BulkDataReader
	empty bool
}

func newOneShotIterator(r io.Reader) BulkDataIterator {
	return &oneShotIterator{&BulkDataReader{r}, false}
}

func (it *oneShotIterator) Next() (*BulkDataReader, error) {
	if it.empty {
		if err := it.r.Close(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	it.empty = true
	return it.r, nil
}

func (it *oneShotIterator) Close() error {
	if err := it.r.Close(); err != nil {
		return fmt.Errorf("closing bulk data: %v", err)
	}
	it.empty = true
	return nil
}

// encapsulatedFormatIterator represents image pixel data (7FE0,0010) in encapsulated format as
// described in http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4.
type encapsulatedFormatIterator struct {
	dr            *dcmReader
	currentReader *BulkDataReader
	empty         bool
}

func newEncapsulatedFormatIterator(dr *dcmReader) BulkDataIterator {
	return &encapsulatedFormatIterator{dr, nil, false}
}

// Next returns the next fragment of the pixel data. The first return from Next will be the
// Basic Offset Table if present or an empty BulkDataReader otherwise.
func (it *encapsulatedFormatIterator) Next() (*BulkDataReader, error) {
	if it.empty {
		return nil, io.EOF
	}
	if it.currentReader != nil {
		if err := it.currentReader.Close(); err != nil {
			return nil, err
		}
	}

	// encapsulated formats are always little endian
	tag, length, err := readItemHeader(it.dr, binary.LittleEndian)
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading fragment header: %v", err)
	}
	switch {
	case tag == SequenceDelimitationItemTag:
		it.empty = true
		return nil, io.EOF
	case tag != ItemTag:
		return nil, fmt.Errorf("invalid fragment tag: got %v, want %v", tag, ItemTag)
	case length == UndefinedLength:
		return nil, fmt.Errorf("expected fragment to be of explicit length")
	}

	it.currentReader = &BulkDataReader{it.dr.Limit(int64(length)).r}
	return it.currentReader, nil
}

// Close discards all fragments in the iterator
func (it *encapsulatedFormatIterator) Close() error {
	for _, err := it.Next(); err != io.EOF; _, err = it.Next() {
		if err != nil {
			return fmt.Errorf("discarding fragment: %v", err)
		}
	}
	return nil
}

// writeEncapsulatedFormat writes fragments in the encapsulated format. The first fragment is
// the basic offset table; an empty one is written when there are no fragments.
func writeEncapsulatedFormat(dw *dcmWriter, fragments [][]byte) error {
	if len(fragments) == 0 {
		fragments = [][]byte{{}}
	}
	for i, fragment := range fragments {
		padded := len(fragment) % 2
		if err := dw.item(ItemTag, uint32(len(fragment)+padded)); err != nil {
			return fmt.Errorf("writing header of fragment %d: %v", i, err)
		}
		if err := dw.raw(fragment); err != nil {
			return fmt.Errorf("writing fragment %d: %v", i, err)
		}
		if padded == 1 {
			if err := dw.raw([]byte{0x00}); err != nil {
				return err
			}
		}
	}
	return dw.item(SequenceDelimitationItemTag, 0)
}
