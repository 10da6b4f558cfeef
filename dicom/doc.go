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

// Package dicom provides functions and data structures for reading and writing the DICOM file
// format as needed to rewrite the pixel data of single images.
// The package provides a high level and low level API for parsing DICOM files.
// The high level API consists of the functions Parse and Construct which operate on DICOM Data
// Elements buffered into memory as a DataSet. The low level API consists of the streaming
// DataElementIterator which does not require buffering and operates on DataElements one at a time.
//
// The Parse function and the DataElementIterator represent the ValueField of DataElements
// differently. The Parse function buffers VRs of potentially enormous size (SQ, OX, UN, UT, UR,
// UC) into memory. In contrast, the DataElementIterator does not buffer these VRs and instead
// represents them as streaming interfaces.
//
// Private data elements are addressed through PrivateTag, which resolves the block reserved by a
// private creator. The data dictionary only covers the tags this package writes itself.
package dicom
