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
	"io"
)

// dcmWriter encodes the fixed size fields of a data set in one byte order. The first error is
// kept and returned by every later call.
type dcmWriter struct {
	w       io.Writer
	order   binary.ByteOrder
	scratch [4]byte
	err     error
}

func newDcmWriter(w io.Writer, order binary.ByteOrder) *dcmWriter {
	return &dcmWriter{w: w, order: order}
}

func (dw *dcmWriter) raw(b []byte) error {
	if dw.err != nil {
		return dw.err
	}
	_, dw.err = dw.w.Write(b)
	return dw.err
}

func (dw *dcmWriter) u16(v uint16) error {
	dw.order.PutUint16(dw.scratch[:2], v)
	return dw.raw(dw.scratch[:2])
}

func (dw *dcmWriter) u32(v uint32) error {
	dw.order.PutUint32(dw.scratch[:4], v)
	return dw.raw(dw.scratch[:4])
}

func (dw *dcmWriter) tag(t DataElementTag) error {
	if err := dw.u16(t.GroupNumber()); err != nil {
		return err
	}
	return dw.u16(t.ElementNumber())
}

// item writes the header of an item, a fragment or a delimitation item
func (dw *dcmWriter) item(t DataElementTag, length uint32) error {
	if err := dw.tag(t); err != nil {
		return err
	}
	return dw.u32(length)
}
