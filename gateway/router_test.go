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
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/flocknet/flock/model"
)

func TestRouter_PicksLeastLoaded(t *testing.T) {
	s1 := newFakeShardClient("s1")
	s2 := newFakeShardClient("s2")
	g, registry := newTestGateway(s1, s2)

	// s1 carries more posts than s2.
	s1.addPost("2025-03-01T00:00:01.000000000Z")
	s1.addPost("2025-03-01T00:00:02.000000000Z")
	probe(registry, 0)
	probe(registry, 1)

	res, err := g.CreatePost(context.Background(), "alice", "hi")
	assert.NoError(t, err)
	assert.Equal(t, "s2", res.ShardID)
	assert.NotEmpty(t, res.ID)
	assert.NotEmpty(t, res.CreatedAt)
}

func TestRouter_TieGoesToConfigOrder(t *testing.T) {
	s1 := newFakeShardClient("s1")
	s2 := newFakeShardClient("s2")
	g, registry := newTestGateway(s1, s2)
	probe(registry, 0)
	probe(registry, 1)

	res, err := g.CreatePost(context.Background(), "alice", "hi")
	assert.NoError(t, err)
	assert.Equal(t, "s1", res.ShardID)
}

func TestRouter_OptimisticLoadBump(t *testing.T) {
	s1 := newFakeShardClient("s1")
	s2 := newFakeShardClient("s2")
	g, _ := newTestGateway(s1, s2)

	// Without any probe in between, consecutive writes must spread out:
	// each success bumps the routed shard's cached load.
	first, err := g.CreatePost(context.Background(), "alice", "hi")
	assert.NoError(t, err)
	second, err := g.CreatePost(context.Background(), "bob", "yo")
	assert.NoError(t, err)

	assert.Equal(t, "s1", first.ShardID)
	assert.Equal(t, "s2", second.ShardID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRouter_NoHealthyShard(t *testing.T) {
	s1 := newFakeShardClient("s1")
	g, registry := newTestGateway(s1)

	s1.SetError(errors.New("down"))
	probe(registry, 0)

	_, err := g.CreatePost(context.Background(), "alice", "hi")
	assert.ErrorIs(t, err, model.ErrNoHealthyShard)

	_, err = g.CreateComment(context.Background(), "post-1", "alice", "hi")
	assert.ErrorIs(t, err, model.ErrNoHealthyShard)
}

func TestRouter_DownstreamFailureDoesNotBump(t *testing.T) {
	s1 := newFakeShardClient("s1")
	g, registry := newTestGateway(s1)

	// Healthy per the last probe, but the forward itself fails.
	probe(registry, 0)
	s1.SetError(errors.Wrap(model.ErrShardUnavailable, "connection reset"))

	_, err := g.CreatePost(context.Background(), "alice", "hi")
	assert.ErrorIs(t, err, model.ErrShardUnavailable)

	// The failed write must not leak into the load metric, and the
	// request path must not have flipped health.
	status := registry.Snapshot()[0]
	assert.EqualValues(t, 0, status.Load)
	assert.True(t, status.Healthy)
}

func TestRouter_CommentDoesNotBumpLoad(t *testing.T) {
	s1 := newFakeShardClient("s1")
	g, registry := newTestGateway(s1)

	res, err := g.CreateComment(context.Background(), "post-1", "alice", "hi")
	assert.NoError(t, err)
	assert.Equal(t, "post-1", res.PostID)

	assert.EqualValues(t, 0, registry.Snapshot()[0].Load)
}
