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

package rewrite

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/GoogleCloudPlatform/elscint-rewrite/dicom"
)

// DICOMOpener opens DICOM Part 10 files from the file system
type DICOMOpener struct{}

// Open parses the DICOM file at path
func (DICOMOpener) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := dicom.Parse(bufio.NewReader(f), dicom.DropGroupLengths)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return &dicomDocument{ds}, nil
}

type dicomDocument struct {
	ds *dicom.DataSet
}

func (d *dicomDocument) PrivateValue(tag dicom.PrivateTag) ([]byte, bool, error) {
	elem, ok, err := d.ds.FindPrivateElement(tag)
	if err != nil || !ok {
		return nil, false, err
	}
	value, err := elem.Bytes()
	if err != nil {
		return nil, false, fmt.Errorf("reading %v: %w", elem.Tag, err)
	}
	return value, true, nil
}

func (d *dicomDocument) Geometry() (Geometry, bool) {
	rows, ok := d.intValue(dicom.RowsTag)
	if !ok {
		return Geometry{}, false
	}
	columns, ok := d.intValue(dicom.ColumnsTag)
	if !ok {
		return Geometry{}, false
	}
	return Geometry{Rows: int(rows), Columns: int(columns)}, true
}

func (d *dicomDocument) intValue(tag dicom.DataElementTag) (int64, bool) {
	elem, ok := d.ds.Elements[tag]
	if !ok {
		return 0, false
	}
	v, err := elem.IntValue()
	if err != nil {
		return 0, false
	}
	return v, true
}

func (d *dicomDocument) ReplacePixelData(img Image) error {
	if img.Rows <= 0 || img.Columns <= 0 || img.Rows > math.MaxUint16 || img.Columns > math.MaxUint16 {
		return fmt.Errorf("invalid geometry %v", img.Geometry)
	}
	if len(img.Samples) != img.Pixels() {
		return fmt.Errorf("got %d samples for geometry %v", len(img.Samples), img.Geometry)
	}

	pixels := make([]byte, 2*len(img.Samples))
	for i, s := range img.Samples {
		binary.LittleEndian.PutUint16(pixels[2*i:], s)
	}

	d.ds.Merge(dicom.NewDataSet(map[dicom.DataElementTag]interface{}{
		dicom.TransferSyntaxUIDTag:         []string{dicom.ExplicitVRLittleEndianUID},
		dicom.SamplesPerPixelTag:           []uint16{1},
		dicom.PhotometricInterpretationTag: []string{"MONOCHROME2"},
		dicom.RowsTag:                      []uint16{uint16(img.Rows)},
		dicom.ColumnsTag:                   []uint16{uint16(img.Columns)},
		dicom.BitsAllocatedTag:             []uint16{16},
		dicom.BitsStoredTag:                []uint16{16},
		dicom.HighBitTag:                   []uint16{15},
		dicom.PixelRepresentationTag:       []uint16{1},
		dicom.PixelDataTag:                 dicom.NewBulkDataBuffer(pixels),
	}))
	// a single frame is written
	d.ds.Remove(dicom.NumberOfFramesTag)
	return nil
}

func (d *dicomDocument) RemovePrivate(tag dicom.PrivateTag) error {
	_, err := d.ds.RemovePrivateBlockElement(tag)
	return err
}

func (d *dicomDocument) SetInstanceUID(uid string) error {
	d.ds.Merge(dicom.NewDataSet(map[dicom.DataElementTag]interface{}{
		dicom.SOPInstanceUIDTag:             []string{uid},
		dicom.MediaStorageSOPInstanceUIDTag: []string{uid},
	}))
	return nil
}

// Save writes to a temporary file in the directory of path and renames it to path
func (d *dicomDocument) Save(path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := dicom.Construct(w, d.ds); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
