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
	"log/slog"

	"github.com/flocknet/flock/common/metrics"
	"github.com/flocknet/flock/model"
)

var routedWrites = metrics.NewCounterVec(
	"flock_gateway_routed_writes_total",
	"The number of writes forwarded per shard",
	"shard", "kind")

type CreatePostResponse struct {
	ID        string `json:"id"`
	ShardID   string `json:"shard_id"`
	CreatedAt string `json:"created_at"`
}

type CreateCommentResponse struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	CreatedAt string `json:"created_at"`
}

// pickLeastLoaded selects the healthy shard with the minimum load metric.
// Ties go to the first match, which is configuration order because targets
// preserve registry order.
func pickLeastLoaded(targets []Target) (Target, bool) {
	if len(targets) == 0 {
		return Target{}, false
	}

	best := targets[0]
	for _, t := range targets[1:] {
		if t.Load < best.Load {
			best = t
		}
	}
	return best, true
}

// CreatePost forwards the write to the least-loaded healthy shard. On
// success the shard's cached load is bumped immediately so back-to-back
// writes between probe intervals do not all pile onto the same shard.
func (g *Gateway) CreatePost(ctx context.Context, author, body string) (CreatePostResponse, error) {
	target, ok := pickLeastLoaded(g.registry.HealthyTargets())
	if !ok {
		return CreatePostResponse{}, model.ErrNoHealthyShard
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.WriteTimeout)
	defer cancel()

	post, err := target.Client.CreatePost(ctx, model.CreatePostRequest{
		Author: author,
		Body:   body,
	})
	if err != nil {
		g.log.Warn(
			"Failed to forward post create",
			slog.String("shard", target.ShardID),
			slog.Any("error", err),
		)
		return CreatePostResponse{}, err
	}

	g.registry.BumpLoad(target)
	routedWrites.WithLabelValues(target.ShardID, "post").Inc()

	return CreatePostResponse{
		ID:        post.ID,
		ShardID:   post.ShardID,
		CreatedAt: post.CreatedAt,
	}, nil
}

// CreateComment routes like CreatePost but does not bump the cached load:
// the load metric is the post count, which a comment does not change.
func (g *Gateway) CreateComment(ctx context.Context, postID, author, body string) (CreateCommentResponse, error) {
	target, ok := pickLeastLoaded(g.registry.HealthyTargets())
	if !ok {
		return CreateCommentResponse{}, model.ErrNoHealthyShard
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.WriteTimeout)
	defer cancel()

	comment, err := target.Client.CreateComment(ctx, postID, model.CreateCommentRequest{
		Author: author,
		Body:   body,
	})
	if err != nil {
		g.log.Warn(
			"Failed to forward comment create",
			slog.String("shard", target.ShardID),
			slog.Any("error", err),
		)
		return CreateCommentResponse{}, err
	}

	routedWrites.WithLabelValues(target.ShardID, "comment").Inc()

	return CreateCommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		CreatedAt: comment.CreatedAt,
	}, nil
}
