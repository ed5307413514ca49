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

package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	saved := readBuildInfo
	defer func() {
		readBuildInfo = saved
		SHA, TAG = "", ""
	}()
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }

	assert.Equal(t, "0.3.0", Version())
	TAG = "rc1"
	assert.Equal(t, "0.3.0-rc1", Version())
	SHA = "abcdef0"
	assert.Equal(t, "0.3.0-rc1+sha.abcdef0", Version())

	SHA, TAG = "", ""
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
		}}, true
	}
	assert.Equal(t, "0.3.0+sha.0123456", Version())
}
