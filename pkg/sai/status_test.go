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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorText(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("item not found: bridge 0x1", NewError(StatusItemNotFound, "bridge %s", "0x1").Error())
	assert.Equal("invalid attribute value at index 2", AttrError(StatusInvalidAttrValue, 2).Error())
	assert.Equal("buffer overflow, 5 entries required", BufferOverflowError(5).Error())
	assert.Equal("Status(99)", Status(99).String())

	inner := errors.New("hw timeout")
	err := WrapError(StatusFailure, inner, "remove %d", 3)
	assert.Equal("failure: remove 3: hw timeout", err.Error())
	assert.ErrorIs(err, inner)
	assert.Nil(WrapError(StatusFailure, nil, "unused"))
}

func TestStatusOf(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(StatusSuccess, StatusOf(nil))
	assert.Equal(StatusFailure, StatusOf(errors.New("plain")))
	wrapped := fmt.Errorf("create: %w", NewError(StatusObjectInUse, "busy"))
	assert.Equal(StatusObjectInUse, StatusOf(wrapped))
	assert.Equal(3, RequiredOf(fmt.Errorf("list: %w", BufferOverflowError(3))))
	assert.Zero(RequiredOf(NewError(StatusFailure, "x")))
}

func TestAttrIndex(t *testing.T) {
	assert := assert.New(t)

	idx, ok := AttrIndexOf(AttrError(StatusUnknownAttribute, 1))
	assert.True(ok)
	assert.Equal(1, idx)

	// not an indexed status
	_, ok = AttrIndexOf(NewError(StatusInvalidParameter, "x"))
	assert.False(ok)

	moved := WithIndex(AttrErrorf(StatusAttrNotSupported, 0, "flood group"), 4)
	idx, ok = AttrIndexOf(moved)
	assert.True(ok)
	assert.Equal(4, idx)
	assert.Contains(moved.Error(), "flood group")

	plain := NewError(StatusFailure, "x")
	assert.Same(plain, WithIndex(plain, 4))
}
