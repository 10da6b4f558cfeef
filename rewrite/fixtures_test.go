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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/elscint-rewrite/dicom"
	"github.com/GoogleCloudPlatform/elscint-rewrite/pmsct"
)

const (
	testSOPClassUID    = "1.2.840.10008.5.1.4.1.1.2"
	testSOPInstanceUID = "1.2.3.4.5.6.7"
)

// testPalette is the little endian value of the OW palette element of every fixture
var testPalette = []byte{0x01, 0x02, 0x03, 0x04}

// fixture describes an ELSCINT1 input file
type fixture struct {
	syntaxUID string
	// block reserved by the ELSCINT1 creator in group 07A1
	block           uint8
	compressionType []string
	compressed      []byte
	noCompressed    bool
	rows, columns   uint16
	characterSet    []string
}

func newFixture(rows, columns uint16, samples []uint16) fixture {
	return fixture{
		syntaxUID:       dicom.ExplicitVRLittleEndianUID,
		block:           0x10,
		compressionType: []string{"PMSCT_RLE1"},
		compressed:      pmsct.Encode(samples),
		rows:            rows,
		columns:         columns,
	}
}

func (f fixture) dataSet() *dicom.DataSet {
	elems := map[dicom.DataElementTag]interface{}{
		dicom.FileMetaInformationVersionTag:     dicom.NewBulkDataBuffer([]byte{0, 1}),
		dicom.MediaStorageSOPClassUIDTag:        []string{testSOPClassUID},
		dicom.MediaStorageSOPInstanceUIDTag:     []string{testSOPInstanceUID},
		dicom.TransferSyntaxUIDTag:              []string{f.syntaxUID},
		dicom.SOPClassUIDTag:                    []string{testSOPClassUID},
		dicom.SOPInstanceUIDTag:                 []string{testSOPInstanceUID},
		dicom.ModalityTag:                       []string{"CT"},
		dicom.ManufacturerTag:                   []string{"ELSCINT"},
		dicom.PatientNameTag:                    []string{"Doe^Jane"},
		dicom.RedPaletteColorLookupTableDataTag: dicom.NewBulkDataBuffer(testPalette),
	}
	elems[dicom.DataElementTag(0x07A10000|uint32(f.block))] = []string{"ELSCINT1"}
	if f.rows > 0 {
		elems[dicom.RowsTag] = []uint16{f.rows}
	}
	if f.columns > 0 {
		elems[dicom.ColumnsTag] = []uint16{f.columns}
	}
	if f.characterSet != nil {
		elems[dicom.SpecificCharacterSetTag] = f.characterSet
	}
	if f.compressionType != nil {
		elems[CompressionTypeTag.InBlock(f.block)] = f.compressionType
	}
	if !f.noCompressed {
		elems[CompressedDataTag.InBlock(f.block)] = dicom.NewBulkDataBuffer(f.compressed)
	}

	ds := dicom.NewDataSet(elems)
	// the dictionary does not know private elements
	if elem, ok := ds.Elements[CompressionTypeTag.InBlock(f.block)]; ok {
		elem.VR = dicom.CSVR
	}
	if elem, ok := ds.Elements[CompressedDataTag.InBlock(f.block)]; ok {
		elem.VR = dicom.OBVR
	}
	return ds
}

func (f fixture) write(t *testing.T, dir, name string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, dicom.Construct(buf, f.dataSet()))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func parseFile(t *testing.T, path string) *dicom.DataSet {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	ds, err := dicom.Parse(f)
	require.NoError(t, err)
	return ds
}

func pixelBytes(samples []uint16) []byte {
	b := make([]byte, 0, 2*len(samples))
	for _, s := range samples {
		b = append(b, byte(s), byte(s>>8))
	}
	return b
}

func rampSamples(n int) []uint16 {
	samples := make([]uint16, n)
	for i := range samples {
		samples[i] = uint16(i*7) ^ 0x5AA5
	}
	return samples
}
