// Copyright (C) 2024 Nippon Telegraph and Telephone Corporation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sai

type Operation int

const (
	OperationCreate Operation = iota
	OperationSet
	OperationGet
)

func (o Operation) String() string {
	switch o {
	case OperationCreate:
		return "create"
	case OperationSet:
		return "set"
	case OperationGet:
		return "get"
	}
	return "unknown"
}

// AttrValue holds the value of one attribute. Which field is meaningful
// depends on the attribute id.
type AttrValue struct {
	Bool bool     `json:"bool,omitempty"`
	U16  uint16   `json:"u16,omitempty"`
	U32  uint32   `json:"u32,omitempty"`
	S32  int32    `json:"s32,omitempty"`
	OID  ObjectID `json:"oid,omitempty"`
	// OIDList is filled by list gets. Its length is the capacity the
	// caller offers.
	OIDList []ObjectID `json:"oid_list,omitempty"`
}

type Attribute struct {
	ID    uint32    `json:"id"`
	Value AttrValue `json:"value"`
}

func BoolAttr(id uint32, v bool) Attribute {
	return Attribute{ID: id, Value: AttrValue{Bool: v}}
}

func U16Attr(id uint32, v uint16) Attribute {
	return Attribute{ID: id, Value: AttrValue{U16: v}}
}

func U32Attr(id uint32, v uint32) Attribute {
	return Attribute{ID: id, Value: AttrValue{U32: v}}
}

func S32Attr(id uint32, v int32) Attribute {
	return Attribute{ID: id, Value: AttrValue{S32: v}}
}

func OIDAttr(id uint32, v ObjectID) Attribute {
	return Attribute{ID: id, Value: AttrValue{OID: v}}
}

// OIDListAttr builds a list attribute able to receive up to capacity ids.
func OIDListAttr(id uint32, capacity int) Attribute {
	return Attribute{ID: id, Value: AttrValue{OIDList: make([]ObjectID, capacity)}}
}
