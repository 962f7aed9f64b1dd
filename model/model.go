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

import (
	"sort"
	"time"
)

// TimestampFormat is the wire format for creation timestamps. Fixed-width
// RFC3339 in UTC, so lexicographic comparison of two timestamps is
// equivalent to chronological comparison. Cross-shard ordering is only as
// good as the shard clocks; there is no clock synchronization.
const TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// Post is one record owned by a single shard. CommentIDs is denormalized
// bookkeeping and is not authoritative; the comment namespace is.
type Post struct {
	ID         string   `json:"id"`
	Author     string   `json:"author"`
	Body       string   `json:"body"`
	CreatedAt  string   `json:"created_at"`
	ShardID    string   `json:"shard_id"`
	CommentIDs []string `json:"comment_ids,omitempty"`
}

// Comment references its parent post by id only. The parent may live on a
// different shard, or not exist at all: referential integrity is not
// enforced at write time.
type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// SortPosts orders posts newest-first. Ties on the timestamp are broken by
// id so that the order is total and stable across shards and processes.
func SortPosts(posts []Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt != posts[j].CreatedAt {
			return posts[i].CreatedAt > posts[j].CreatedAt
		}
		return posts[i].ID < posts[j].ID
	})
}

// SortComments orders comments oldest-first, with the same id tie-break
// as SortPosts.
func SortComments(comments []Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt != comments[j].CreatedAt {
			return comments[i].CreatedAt < comments[j].CreatedAt
		}
		return comments[i].ID < comments[j].ID
	})
}
