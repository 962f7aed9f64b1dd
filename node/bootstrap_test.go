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

package node

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/flocknet/flock/dfs"
)

// corruptFS returns garbage on every read, which must fail the bootstrap
// capability self-test.
type corruptFS struct {
	dfs.Filesystem
}

func (*corruptFS) ReadFile(string) ([]byte, error) {
	return []byte("garbage"), nil
}

func TestNewStore_ConnectedFirstAttempt(t *testing.T) {
	backend := dfs.NewMemory()
	var attempts atomic.Int32

	store, err := NewStore(Options{
		ShardID:            "s1",
		MaxConnectAttempts: 3,
		ConnectBackoff:     time.Millisecond,
		newBackend: func() (dfs.Filesystem, error) {
			attempts.Add(1)
			return backend, nil
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, Connected, store.Mode())
	assert.EqualValues(t, 1, attempts.Load())
}

func TestNewStore_RetriesThenConnects(t *testing.T) {
	backend := dfs.NewMemory()
	var attempts atomic.Int32

	store, err := NewStore(Options{
		ShardID:            "s1",
		MaxConnectAttempts: 3,
		ConnectBackoff:     time.Millisecond,
		newBackend: func() (dfs.Filesystem, error) {
			if attempts.Add(1) < 3 {
				return nil, errors.New("namenode not reachable")
			}
			return backend, nil
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, Connected, store.Mode())
	assert.EqualValues(t, 3, attempts.Load())
}

func TestNewStore_DegradedAfterExhaustedAttempts(t *testing.T) {
	var attempts atomic.Int32

	store, err := NewStore(Options{
		ShardID:            "s1",
		DataDir:            t.TempDir(),
		MaxConnectAttempts: 3,
		ConnectBackoff:     time.Millisecond,
		newBackend: func() (dfs.Filesystem, error) {
			attempts.Add(1)
			return nil, errors.New("namenode not reachable")
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, Degraded, store.Mode())
	assert.EqualValues(t, 3, attempts.Load())

	// Degraded mode is invisible to callers: a create/list round trip
	// behaves exactly as when connected.
	post, err := store.CreatePost("alice", "hi")
	assert.NoError(t, err)

	posts, err := store.ListPosts()
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	assert.Equal(t, "degraded", store.BackendStats().Mode)
	assert.NoError(t, store.Close())
}

func TestNewStore_SelfTestRejectsBrokenBackend(t *testing.T) {
	store, err := NewStore(Options{
		ShardID:            "s1",
		DataDir:            t.TempDir(),
		MaxConnectAttempts: 2,
		ConnectBackoff:     time.Millisecond,
		newBackend: func() (dfs.Filesystem, error) {
			return &corruptFS{Filesystem: dfs.NewMemory()}, nil
		},
	})
	assert.NoError(t, err)
	// The backend "connected" but failed the marker round trip, so the
	// node must not trust it.
	assert.Equal(t, Degraded, store.Mode())
}

func TestSelfTest_Passes(t *testing.T) {
	fs := dfs.NewMemory()
	assert.NoError(t, selfTest(fs, Layout{ShardID: "s1"}))
	// Repeatable on the same backend.
	assert.NoError(t, selfTest(fs, Layout{ShardID: "s1"}))
}
