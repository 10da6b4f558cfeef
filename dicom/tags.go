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

// Tags used by this package and its callers. Names follow the keywords of the DICOM data
// dictionary http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_6
const (
	FileMetaInformationGroupLengthTag DataElementTag = 0x00020000
	FileMetaInformationVersionTag     DataElementTag = 0x00020001
	MediaStorageSOPClassUIDTag        DataElementTag = 0x00020002
	MediaStorageSOPInstanceUIDTag     DataElementTag = 0x00020003
	TransferSyntaxUIDTag              DataElementTag = 0x00020010
	ImplementationClassUIDTag         DataElementTag = 0x00020012
	ImplementationVersionNameTag      DataElementTag = 0x00020013
	SourceApplicationEntityTitleTag   DataElementTag = 0x00020016

	SpecificCharacterSetTag     DataElementTag = 0x00080005
	ImageTypeTag                DataElementTag = 0x00080008
	SOPClassUIDTag              DataElementTag = 0x00080016
	SOPInstanceUIDTag           DataElementTag = 0x00080018
	StudyDateTag                DataElementTag = 0x00080020
	ModalityTag                 DataElementTag = 0x00080060
	ManufacturerTag             DataElementTag = 0x00080070
	ReferencedStudySequenceTag  DataElementTag = 0x00081110
	ReferencedImageSequenceTag  DataElementTag = 0x00081140
	ReferencedSOPClassUIDTag    DataElementTag = 0x00081150
	ReferencedSOPInstanceUIDTag DataElementTag = 0x00081155
	PatientNameTag              DataElementTag = 0x00100010
	PatientIDTag                DataElementTag = 0x00100020
	SliceThicknessTag           DataElementTag = 0x00180050
	StudyInstanceUIDTag         DataElementTag = 0x0020000D
	SeriesInstanceUIDTag        DataElementTag = 0x0020000E
	InstanceNumberTag           DataElementTag = 0x00200013

	SamplesPerPixelTag           DataElementTag = 0x00280002
	PhotometricInterpretationTag DataElementTag = 0x00280004
	NumberOfFramesTag            DataElementTag = 0x00280008
	RowsTag                      DataElementTag = 0x00280010
	ColumnsTag                   DataElementTag = 0x00280011
	PixelSpacingTag              DataElementTag = 0x00280030
	BitsAllocatedTag             DataElementTag = 0x00280100
	BitsStoredTag                DataElementTag = 0x00280101
	HighBitTag                   DataElementTag = 0x00280102
	PixelRepresentationTag       DataElementTag = 0x00280103
	WindowCenterTag              DataElementTag = 0x00281050
	WindowWidthTag               DataElementTag = 0x00281051
	RescaleInterceptTag          DataElementTag = 0x00281052
	RescaleSlopeTag              DataElementTag = 0x00281053

	RedPaletteColorLookupTableDataTag DataElementTag = 0x00281201

	PixelDataTag DataElementTag = 0x7FE00010

	// Item, item delimitation and sequence delimitation tags have no VR
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.5
	ItemTag                     DataElementTag = 0xFFFEE000
	ItemDelimitationItemTag     DataElementTag = 0xFFFEE00D
	SequenceDelimitationItemTag DataElementTag = 0xFFFEE0DD
)

// dictionary is the subset of the DICOM data dictionary needed to read the implicit VR syntax for
// the tags above. Tags with several VRs in the standard use the one written by this package.
var dictionary = map[DataElementTag]*VR{
	FileMetaInformationVersionTag:   OBVR,
	MediaStorageSOPClassUIDTag:      UIVR,
	MediaStorageSOPInstanceUIDTag:   UIVR,
	TransferSyntaxUIDTag:            UIVR,
	ImplementationClassUIDTag:       UIVR,
	ImplementationVersionNameTag:    SHVR,
	SourceApplicationEntityTitleTag: AEVR,

	SpecificCharacterSetTag:     CSVR,
	ImageTypeTag:                CSVR,
	SOPClassUIDTag:              UIVR,
	SOPInstanceUIDTag:           UIVR,
	StudyDateTag:                DAVR,
	ModalityTag:                 CSVR,
	ManufacturerTag:             LOVR,
	ReferencedStudySequenceTag:  SQVR,
	ReferencedImageSequenceTag:  SQVR,
	ReferencedSOPClassUIDTag:    UIVR,
	ReferencedSOPInstanceUIDTag: UIVR,
	PatientNameTag:              PNVR,
	PatientIDTag:                LOVR,
	SliceThicknessTag:           DSVR,
	StudyInstanceUIDTag:         UIVR,
	SeriesInstanceUIDTag:        UIVR,
	InstanceNumberTag:           ISVR,

	SamplesPerPixelTag:           USVR,
	PhotometricInterpretationTag: CSVR,
	NumberOfFramesTag:            ISVR,
	RowsTag:                      USVR,
	ColumnsTag:                   USVR,
	PixelSpacingTag:              DSVR,
	BitsAllocatedTag:             USVR,
	BitsStoredTag:                USVR,
	HighBitTag:                   USVR,
	PixelRepresentationTag:       USVR,
	WindowCenterTag:              DSVR,
	WindowWidthTag:               DSVR,
	RescaleInterceptTag:          DSVR,
	RescaleSlopeTag:              DSVR,

	RedPaletteColorLookupTableDataTag: OWVR,
	PixelDataTag:                      OWVR,
}

// DictionaryVR returns the VR of the tag according to the data dictionary. Group length elements
// (gggg,0000) are UL, private creator elements are LO and any other tag missing from the
// dictionary is UN.
func (t DataElementTag) DictionaryVR() *VR {
	if t.ElementNumber() == 0x0000 {
		return ULVR
	}
	if t.IsPrivateCreator() {
		return LOVR
	}
	if vr, ok := dictionary[t]; ok {
		return vr
	}
	return UNVR
}
