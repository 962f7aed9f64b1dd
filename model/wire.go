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

package model

// Wire types for the storage-node RPC surface, shared between the node's
// HTTP handlers and the gateway's shard client.

type CreatePostRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

type CreateCommentRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// NodeHealth is the probe response. PostCount doubles as the load metric
// driving least-loaded routing.
type NodeHealth struct {
	ShardID   string `json:"shard_id"`
	Status    string `json:"status"`
	PostCount int64  `json:"post_count"`
	Timestamp string `json:"timestamp"`
}

type PostList struct {
	ShardID    string `json:"shard_id"`
	Posts      []Post `json:"posts"`
	TotalCount int    `json:"total_count"`
}

type CommentList struct {
	PostID   string    `json:"post_id"`
	Comments []Comment `json:"comments"`
}

// BackendStats describes which store a node is writing to.
type BackendStats struct {
	Mode      string `json:"mode"`
	Address   string `json:"address,omitempty"`
	ShardRoot string `json:"shard_root"`
}

type NodeStats struct {
	ShardID   string       `json:"shard_id"`
	PostCount int64        `json:"post_count"`
	Backend   BackendStats `json:"backend"`
	Error     string       `json:"error,omitempty"`
}
