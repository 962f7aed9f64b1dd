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
	"encoding/json"
	"log/slog"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/flocknet/flock/common/metrics"
	"github.com/flocknet/flock/dfs"
	"github.com/flocknet/flock/model"
)

var (
	malformedRecords = metrics.NewCounterVec(
		"flock_node_malformed_records_total",
		"The number of stored records that failed to parse and were skipped",
		"shard")
	replicaWriteFailures = metrics.NewCounterVec(
		"flock_node_replica_write_failures_total",
		"The number of best-effort global replica writes that failed",
		"shard")
)

type Mode uint32

const (
	// Connected means the store writes to the distributed backend.
	Connected Mode = iota
	// Degraded means the backend could not be reached at bootstrap and all
	// operations go to the local fallback store. The transition is one-way:
	// a degraded node never retries the backend, restart is the only
	// recovery path.
	Degraded
)

func (m Mode) String() string {
	if m == Degraded {
		return "degraded"
	}
	return "connected"
}

// Store persists the posts and comments owned by one shard. Every record is
// written twice: the authoritative copy under the shard namespace and a
// best-effort replica under the global namespace. A failed replica write is
// logged and never rolled back; availability wins over replica consistency.
type Store struct {
	log         *slog.Logger
	fs          dfs.Filesystem
	layout      Layout
	mode        Mode
	backendAddr string
	postCount   atomic.Int64

	clock func() time.Time
}

func newStore(fs dfs.Filesystem, layout Layout, mode Mode, backendAddr string) (*Store, error) {
	s := &Store{
		log: slog.With(
			slog.String("component", "store"),
			slog.String("shard", layout.ShardID),
			slog.String("backend", fs.Name()),
		),
		fs:          fs,
		layout:      layout,
		mode:        mode,
		backendAddr: backendAddr,
		clock:       time.Now,
	}

	if err := s.Provision(); err != nil {
		return nil, err
	}

	count, err := s.CountPosts()
	if err != nil {
		return nil, err
	}
	s.postCount.Store(count)

	s.log.Info(
		"Initialized shard store",
		slog.String("mode", mode.String()),
		slog.Int64("post-count", count),
	)
	return s, nil
}

// Provision creates the shard and global namespaces. Idempotent: running it
// against already provisioned storage is a no-op.
func (s *Store) Provision() error {
	for _, dir := range s.layout.Dirs() {
		if err := s.fs.MkdirAll(dir); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreatePost(author, body string) (model.Post, error) {
	post := model.Post{
		ID:        uuid.NewString(),
		Author:    author,
		Body:      body,
		CreatedAt: model.FormatTimestamp(s.clock()),
		ShardID:   s.layout.ShardID,
	}

	data, err := json.Marshal(post)
	if err != nil {
		return model.Post{}, err
	}

	if err := s.fs.WriteFile(s.layout.RecordFile(s.layout.ShardPostsDir(), post.ID), data); err != nil {
		return model.Post{}, errors.Wrapf(model.ErrStorageWrite, "post %s: %s", post.ID, err)
	}
	s.replicate(s.layout.GlobalPostsDir(), post.ID, data)

	s.postCount.Add(1)
	return post, nil
}

// CreateComment stores a comment without checking that the parent post
// exists on this or any other shard. A comment for an unknown post is
// accepted and simply never surfaces in reverse lookups.
func (s *Store) CreateComment(postID, author, body string) (model.Comment, error) {
	comment := model.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Author:    author,
		Body:      body,
		CreatedAt: model.FormatTimestamp(s.clock()),
	}

	data, err := json.Marshal(comment)
	if err != nil {
		return model.Comment{}, err
	}

	if err := s.fs.WriteFile(s.layout.RecordFile(s.layout.ShardCommentsDir(), comment.ID), data); err != nil {
		return model.Comment{}, errors.Wrapf(model.ErrStorageWrite, "comment %s: %s", comment.ID, err)
	}
	s.replicate(s.layout.GlobalCommentsDir(), comment.ID, data)

	return comment, nil
}

func (s *Store) replicate(globalDir, id string, data []byte) {
	if err := s.fs.WriteFile(s.layout.RecordFile(globalDir, id), data); err != nil {
		replicaWriteFailures.WithLabelValues(s.layout.ShardID).Inc()
		s.log.Warn(
			"Failed to write global replica copy",
			slog.String("id", id),
			slog.Any("error", err),
		)
	}
}

// ListPosts returns every post in the shard namespace, newest first.
// Records that cannot be read or parsed are skipped and logged.
func (s *Store) ListPosts() ([]model.Post, error) {
	posts := make([]model.Post, 0)
	err := s.scanRecords(s.layout.ShardPostsDir(), func(data []byte) error {
		var post model.Post
		if err := json.Unmarshal(data, &post); err != nil {
			return err
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	model.SortPosts(posts)
	return posts, nil
}

// ListComments returns the comments whose parent is postID, oldest first.
// This is a full scan of the shard comment namespace; comment volume per
// shard is small enough that an index is not worth its upkeep.
func (s *Store) ListComments(postID string) ([]model.Comment, error) {
	comments := make([]model.Comment, 0)
	err := s.scanRecords(s.layout.ShardCommentsDir(), func(data []byte) error {
		var comment model.Comment
		if err := json.Unmarshal(data, &comment); err != nil {
			return err
		}
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	model.SortComments(comments)
	return comments, nil
}

func (s *Store) scanRecords(dir string, accept func(data []byte) error) error {
	names, err := s.fs.List(dir)
	if err != nil {
		return err
	}

	for _, name := range names {
		if !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := s.fs.ReadFile(path.Join(dir, name))
		if err != nil {
			s.log.Warn(
				"Skipping unreadable record",
				slog.String("record", name),
				slog.Any("error", err),
			)
			continue
		}
		if err := accept(data); err != nil {
			malformedRecords.WithLabelValues(s.layout.ShardID).Inc()
			s.log.Warn(
				"Skipping malformed record",
				slog.String("record", name),
				slog.Any("error", errors.Wrapf(model.ErrMalformedRecord, "%s: %s", name, err)),
			)
		}
	}
	return nil
}

// CountPosts is the load signal polled by the gateway health checks. It is
// a directory listing, records are not parsed.
func (s *Store) CountPosts() (int64, error) {
	names, err := s.fs.List(s.layout.ShardPostsDir())
	if err != nil {
		return 0, err
	}

	var count int64
	for _, name := range names {
		if strings.HasSuffix(name, ".json") {
			count++
		}
	}
	return count, nil
}

// PostCount returns the cached post count, maintained since bootstrap.
func (s *Store) PostCount() int64 {
	return s.postCount.Load()
}

func (s *Store) ShardID() string {
	return s.layout.ShardID
}

func (s *Store) Mode() Mode {
	return s.mode
}

func (s *Store) BackendStats() model.BackendStats {
	return model.BackendStats{
		Mode:      s.mode.String(),
		Address:   s.backendAddr,
		ShardRoot: s.layout.ShardRoot(),
	}
}

func (s *Store) Close() error {
	return s.fs.Close()
}
