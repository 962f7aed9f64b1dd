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
	"fmt"
	"log/slog"
	"sync"

	"github.com/flocknet/flock/model"
)

// fakeShardClient is an in-memory stand-in for one storage node.
type fakeShardClient struct {
	sync.Mutex

	shardID  string
	err      error
	posts    []model.Post
	comments []model.Comment
	seq      int
}

func newFakeShardClient(shardID string) *fakeShardClient {
	return &fakeShardClient{shardID: shardID}
}

func (f *fakeShardClient) SetError(err error) {
	f.Lock()
	defer f.Unlock()
	f.err = err
}

func (f *fakeShardClient) addPost(createdAt string) model.Post {
	f.Lock()
	defer f.Unlock()
	f.seq++
	post := model.Post{
		ID:        fmt.Sprintf("%s-p%d", f.shardID, f.seq),
		Author:    "author",
		Body:      "body",
		CreatedAt: createdAt,
		ShardID:   f.shardID,
	}
	f.posts = append(f.posts, post)
	return post
}

func (f *fakeShardClient) addComment(postID, createdAt string) model.Comment {
	f.Lock()
	defer f.Unlock()
	f.seq++
	comment := model.Comment{
		ID:        fmt.Sprintf("%s-c%d", f.shardID, f.seq),
		PostID:    postID,
		Author:    "author",
		Body:      "body",
		CreatedAt: createdAt,
	}
	f.comments = append(f.comments, comment)
	return comment
}

func (f *fakeShardClient) Probe(context.Context) (model.NodeHealth, error) {
	f.Lock()
	defer f.Unlock()
	if f.err != nil {
		return model.NodeHealth{}, f.err
	}
	return model.NodeHealth{
		ShardID:   f.shardID,
		Status:    "healthy",
		PostCount: int64(len(f.posts)),
	}, nil
}

func (f *fakeShardClient) CreatePost(_ context.Context, req model.CreatePostRequest) (model.Post, error) {
	f.Lock()
	if f.err != nil {
		defer f.Unlock()
		return model.Post{}, f.err
	}
	f.Unlock()

	post := f.addPost("2025-03-01T00:00:00.000000000Z")
	post.Author = req.Author
	post.Body = req.Body
	return post, nil
}

func (f *fakeShardClient) CreateComment(_ context.Context, postID string, req model.CreateCommentRequest) (model.Comment, error) {
	f.Lock()
	if f.err != nil {
		defer f.Unlock()
		return model.Comment{}, f.err
	}
	f.Unlock()

	comment := f.addComment(postID, "2025-03-01T00:00:00.000000000Z")
	comment.Author = req.Author
	comment.Body = req.Body
	return comment, nil
}

func (f *fakeShardClient) ListPosts(context.Context) (model.PostList, error) {
	f.Lock()
	defer f.Unlock()
	if f.err != nil {
		return model.PostList{}, f.err
	}
	posts := append([]model.Post{}, f.posts...)
	return model.PostList{
		ShardID:    f.shardID,
		Posts:      posts,
		TotalCount: len(posts),
	}, nil
}

func (f *fakeShardClient) ListComments(_ context.Context, postID string) (model.CommentList, error) {
	f.Lock()
	defer f.Unlock()
	if f.err != nil {
		return model.CommentList{}, f.err
	}

	matching := make([]model.Comment, 0)
	for _, c := range f.comments {
		if c.PostID == postID {
			matching = append(matching, c)
		}
	}
	return model.CommentList{PostID: postID, Comments: matching}, nil
}

func (f *fakeShardClient) Stats(context.Context) (model.NodeStats, error) {
	f.Lock()
	defer f.Unlock()
	if f.err != nil {
		return model.NodeStats{}, f.err
	}
	return model.NodeStats{
		ShardID:   f.shardID,
		PostCount: int64(len(f.posts)),
		Backend:   model.BackendStats{Mode: "connected"},
	}, nil
}

// newTestGateway wires fake clients into a gateway without the monitor or
// the HTTP server.
func newTestGateway(clients ...*fakeShardClient) (*Gateway, *Registry) {
	shards := make([]ShardConfig, 0, len(clients))
	byAddr := make(map[string]ShardClient)
	for _, c := range clients {
		addr := c.shardID + ":5000"
		shards = append(shards, ShardConfig{Shard: c.shardID, Addr: addr})
		byAddr[addr] = c
	}

	registry := NewRegistry(shards, func(addr string) ShardClient {
		return byAddr[addr]
	})
	g := &Gateway{
		log:      slog.With(slog.String("component", "gateway")),
		config:   NewConfig(),
		registry: registry,
	}
	return g, registry
}

// probe refreshes one shard's registry entry from its fake client.
func probe(registry *Registry, index int) {
	target := registry.AllTargets()[index]
	health, err := target.Client.Probe(context.Background())
	registry.ApplyProbe(target, health, err)
}
