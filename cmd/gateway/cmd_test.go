// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/flocknet/flock/gateway"
)

func TestLoadClusterConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cluster.yaml")
	assert.NoError(t, os.WriteFile(file, []byte(`
shards:
  - shard: s1
    addr: node1:5000
  - shard: s2
    addr: node2:5000
`), 0o644))

	configFile = file
	defer func() {
		configFile = ""
	}()

	cc, err := loadClusterConfig(viper.New())
	assert.NoError(t, err)
	assert.Equal(t, []gateway.ShardConfig{
		{Shard: "s1", Addr: "node1:5000"},
		{Shard: "s2", Addr: "node2:5000"},
	}, cc.Shards)
}

func TestLoadClusterConfig_MissingFile(t *testing.T) {
	configFile = filepath.Join(t.TempDir(), "does-not-exist.yaml")
	defer func() {
		configFile = ""
	}()

	_, err := loadClusterConfig(viper.New())
	assert.Error(t, err)
}
