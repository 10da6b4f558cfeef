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
	"strings"
)

// PrivateTag identifies a private data element independently of the block its creator was
// assigned in a particular file. The element of the data set is (Group, xxElement) where xx is the
// block reserved by the private creator element (Group,00xx) holding Creator.
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.8.1
type PrivateTag struct {
	Group   uint16
	Element uint8
	Creator string
}

func (pt PrivateTag) String() string {
	return fmt.Sprintf("(%04X,xx%02X,%q)", pt.Group, pt.Element, pt.Creator)
}

// InBlock returns the tag of the private element when its creator holds the given block
func (pt PrivateTag) InBlock(block uint8) DataElementTag {
	return DataElementTag(uint32(pt.Group)<<16 | uint32(block)<<8 | uint32(pt.Element))
}

// PrivateBlock returns the block reserved by creator in group, reporting false when no private
// creator element of the group holds creator. Creator values are decoded with the character set of
// the DataSet, or with the default repertoire when the character set is not recognized, and
// compared ignoring surrounding spaces and null padding.
func (ds *DataSet) PrivateBlock(group uint16, creator string) (uint8, bool, error) {
	if group%2 == 0 {
		return 0, false, fmt.Errorf("group %04X is not private", group)
	}
	coding, err := ds.CharacterSet()
	if err != nil {
		coding = defaultCharacterRepertoire
	}

	want := trimPadding(creator)
	for block := uint32(0x10); block <= 0xFF; block++ {
		elem, ok := ds.Elements[DataElementTag(uint32(group)<<16|block)]
		if !ok {
			continue
		}
		raw, err := elem.Bytes()
		if err != nil {
			return 0, false, fmt.Errorf("reading private creator %v: %v", elem.Tag, err)
		}
		got, err := decodeText(coding, string(raw))
		if err != nil {
			return 0, false, fmt.Errorf("decoding private creator %v: %v", elem.Tag, err)
		}
		if trimPadding(got) == want {
			return uint8(block), true, nil
		}
	}
	return 0, false, nil
}

// FindPrivateElement returns the element identified by the PrivateTag, reporting false when the
// creator has no block in the DataSet or the block does not contain the element.
func (ds *DataSet) FindPrivateElement(pt PrivateTag) (*DataElement, bool, error) {
	block, ok, err := ds.PrivateBlock(pt.Group, pt.Creator)
	if err != nil || !ok {
		return nil, false, err
	}
	elem, ok := ds.Elements[pt.InBlock(block)]
	return elem, ok, nil
}

// RemovePrivateBlockElement deletes the element identified by the PrivateTag. It reports whether an
// element was removed. The private creator element is kept.
func (ds *DataSet) RemovePrivateBlockElement(pt PrivateTag) (bool, error) {
	block, ok, err := ds.PrivateBlock(pt.Group, pt.Creator)
	if err != nil || !ok {
		return false, err
	}
	return ds.Remove(pt.InBlock(block)), nil
}

func trimPadding(s string) string {
	return strings.Trim(s, " \x00")
}
