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

import (
	"errors"
	"fmt"
)

type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusNotSupported
	StatusNoMemory
	StatusInsufficientResources
	StatusInvalidParameter
	StatusItemAlreadyExists
	StatusItemNotFound
	StatusBufferOverflow
	StatusInvalidObjectID
	StatusInvalidObjectType
	StatusObjectInUse
	StatusUninitialized
	StatusMandatoryAttributeMissing
	StatusInvalidAttribute
	StatusInvalidAttrValue
	StatusAttrNotImplemented
	StatusUnknownAttribute
	StatusAttrNotSupported
)

var statusToString = map[Status]string{
	StatusSuccess:                   "success",
	StatusFailure:                   "failure",
	StatusNotSupported:              "not supported",
	StatusNoMemory:                  "no memory",
	StatusInsufficientResources:     "insufficient resources",
	StatusInvalidParameter:          "invalid parameter",
	StatusItemAlreadyExists:         "item already exists",
	StatusItemNotFound:              "item not found",
	StatusBufferOverflow:            "buffer overflow",
	StatusInvalidObjectID:           "invalid object id",
	StatusInvalidObjectType:         "invalid object type",
	StatusObjectInUse:               "object in use",
	StatusUninitialized:             "uninitialized",
	StatusMandatoryAttributeMissing: "mandatory attribute missing",
	StatusInvalidAttribute:          "invalid attribute",
	StatusInvalidAttrValue:          "invalid attribute value",
	StatusAttrNotImplemented:        "attribute not implemented",
	StatusUnknownAttribute:          "unknown attribute",
	StatusAttrNotSupported:          "attribute not supported",
}

func (s Status) String() string {
	if str, ok := statusToString[s]; ok {
		return str
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsIndexed reports whether errors of this status identify an attribute
// position.
func (s Status) IsIndexed() bool {
	switch s {
	case StatusInvalidAttribute, StatusInvalidAttrValue, StatusAttrNotImplemented,
		StatusUnknownAttribute, StatusAttrNotSupported:
		return true
	}
	return false
}

// Error is the error type returned by every bridge operation.
type Error struct {
	Status Status
	// Index is the attribute position for indexed statuses, -1 otherwise.
	Index int
	// Required is the list capacity needed after a BufferOverflow.
	Required int
	Message  string
	err      error
}

func (e *Error) Error() string {
	var s string
	if e.Status.IsIndexed() && e.Index >= 0 {
		s = fmt.Sprintf("%s at index %d", e.Status, e.Index)
	} else if e.Status == StatusBufferOverflow {
		s = fmt.Sprintf("%s, %d entries required", e.Status, e.Required)
	} else {
		s = e.Status.String()
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.err != nil {
		s += ": " + e.err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.err
}

func NewError(status Status, format string, args ...interface{}) *Error {
	return &Error{
		Status:  status,
		Index:   -1,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError attaches status to an underlying error. A nil err yields nil.
func WrapError(status Status, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		Status:  status,
		Index:   -1,
		Message: fmt.Sprintf(format, args...),
		err:     err,
	}
}

func AttrError(status Status, index int) *Error {
	return &Error{
		Status: status,
		Index:  index,
	}
}

func AttrErrorf(status Status, index int, format string, args ...interface{}) *Error {
	return &Error{
		Status:  status,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	}
}

func BufferOverflowError(required int) *Error {
	return &Error{
		Status:   StatusBufferOverflow,
		Index:    -1,
		Required: required,
	}
}

// StatusOf returns the status carried by err. Errors that are not *Error
// report StatusFailure.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusFailure
}

func AttrIndexOf(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Status.IsIndexed() && e.Index >= 0 {
		return e.Index, true
	}
	return -1, false
}

func RequiredOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status == StatusBufferOverflow {
		return e.Required
	}
	return 0
}

// WithIndex rebases an indexed error onto a different attribute position.
// Errors of other statuses are returned unchanged.
func WithIndex(err error, index int) error {
	var e *Error
	if !errors.As(err, &e) || !e.Status.IsIndexed() {
		return err
	}
	c := *e
	c.Index = index
	return &c
}
