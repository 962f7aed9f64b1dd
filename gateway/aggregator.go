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
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flocknet/flock/model"
)

type PostsResponse struct {
	Posts         []model.Post `json:"posts"`
	TotalCount    int          `json:"total_count"`
	ShardsQueried int          `json:"shards_queried"`
}

type StatsResponse struct {
	TotalShards   int               `json:"total_shards"`
	HealthyShards int               `json:"healthy_shards"`
	TotalLoad     int64             `json:"total_load"`
	ShardDetails  []model.NodeStats `json:"shard_details"`
}

// ListPosts queries every healthy shard concurrently and merges the
// results into one globally ordered feed. A shard that errors or times out
// contributes nothing; only the health-check loop may change health state,
// so a failed read never triggers rerouting on its own.
func (g *Gateway) ListPosts(ctx context.Context) (PostsResponse, error) {
	targets := g.registry.HealthyTargets()
	if len(targets) == 0 {
		return PostsResponse{}, model.ErrNoHealthyShard
	}

	results := scatter(ctx, g.log, targets, g.config.ReadTimeout,
		func(ctx context.Context, t Target) ([]model.Post, error) {
			list, err := t.Client.ListPosts(ctx)
			return list.Posts, err
		})

	merged := make([]model.Post, 0)
	for _, posts := range results {
		merged = append(merged, posts...)
	}
	model.SortPosts(merged)

	return PostsResponse{
		Posts:         merged,
		TotalCount:    len(merged),
		ShardsQueried: len(targets),
	}, nil
}

// ListComments fans out like ListPosts; comments for one post may be
// scattered across shards since comments are routed independently of their
// parent post.
func (g *Gateway) ListComments(ctx context.Context, postID string) (model.CommentList, error) {
	targets := g.registry.HealthyTargets()
	if len(targets) == 0 {
		return model.CommentList{}, model.ErrNoHealthyShard
	}

	results := scatter(ctx, g.log, targets, g.config.ReadTimeout,
		func(ctx context.Context, t Target) ([]model.Comment, error) {
			list, err := t.Client.ListComments(ctx, postID)
			return list.Comments, err
		})

	merged := make([]model.Comment, 0)
	for _, comments := range results {
		merged = append(merged, comments...)
	}
	model.SortComments(merged)

	return model.CommentList{
		PostID:   postID,
		Comments: merged,
	}, nil
}

// Stats aggregates registry counters with per-node detail. A shard whose
// detail fetch fails contributes an error placeholder instead of aborting
// the whole response.
func (g *Gateway) Stats(ctx context.Context) StatsResponse {
	stats := StatsResponse{
		ShardDetails: make([]model.NodeStats, g.registry.Size()),
	}

	for _, status := range g.registry.Snapshot() {
		stats.TotalShards++
		if status.Healthy {
			stats.HealthyShards++
			stats.TotalLoad += status.Load
		}
	}

	group := errgroup.Group{}
	group.SetLimit(maxFanOut)
	for _, target := range g.registry.AllTargets() {
		target := target
		group.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, g.config.StatsTimeout)
			defer cancel()

			detail, err := target.Client.Stats(ctx)
			if err != nil {
				detail = model.NodeStats{
					ShardID: target.ShardID,
					Error:   err.Error(),
				}
			}
			stats.ShardDetails[target.index] = detail
			return nil
		})
	}
	_ = group.Wait()

	return stats
}

// scatter runs one call per target concurrently, each under its own
// timeout. Total wall time is bounded by the slowest single call, not the
// sum; a timed-out call is abandoned and its slot stays empty.
func scatter[T any](ctx context.Context, log *slog.Logger, targets []Target,
	timeout time.Duration, call func(ctx context.Context, t Target) ([]T, error)) [][]T {
	results := make([][]T, len(targets))

	group := errgroup.Group{}
	group.SetLimit(maxFanOut)
	for i, target := range targets {
		i, target := i, target
		group.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			records, err := call(ctx, target)
			if err != nil {
				log.Warn(
					"Shard dropped from scatter-gather read",
					slog.String("shard", target.ShardID),
					slog.Any("error", err),
				)
				return nil
			}
			results[i] = records
			return nil
		})
	}
	_ = group.Wait()

	return results
}
