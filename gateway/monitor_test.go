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
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHealthMonitor_TracksShardHealth(t *testing.T) {
	s1 := newFakeShardClient("s1")
	s2 := newFakeShardClient("s2")
	_, registry := newTestGateway(s1, s2)

	s1.addPost("2025-03-01T00:00:01.000000000Z")

	monitor := newHealthMonitor(registry, 10*time.Millisecond, 100*time.Millisecond)
	defer func() {
		assert.NoError(t, monitor.Close())
	}()

	assert.Eventually(t, func() bool {
		statuses := registry.Snapshot()
		return statuses[0].Load == 1 && statuses[0].LastProbe != ""
	}, 10*time.Second, 10*time.Millisecond)

	// One shard failing never skews the other's evaluation.
	s2.SetError(errors.New("connection refused"))

	assert.Eventually(t, func() bool {
		statuses := registry.Snapshot()
		return statuses[0].Healthy && !statuses[1].Healthy
	}, 10*time.Second, 10*time.Millisecond)

	// Health must reflect the latest probe once the shard recovers.
	s2.SetError(nil)

	assert.Eventually(t, func() bool {
		return registry.Snapshot()[1].Healthy
	}, 10*time.Second, 10*time.Millisecond)
}
