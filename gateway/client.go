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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/flocknet/flock/model"
)

// ShardClient is the storage-node surface consumed by the gateway: a
// liveness probe, record creation, per-shard listings and node statistics.
type ShardClient interface {
	Probe(ctx context.Context) (model.NodeHealth, error)
	CreatePost(ctx context.Context, req model.CreatePostRequest) (model.Post, error)
	CreateComment(ctx context.Context, postID string, req model.CreateCommentRequest) (model.Comment, error)
	ListPosts(ctx context.Context) (model.PostList, error)
	ListComments(ctx context.Context, postID string) (model.CommentList, error)
	Stats(ctx context.Context) (model.NodeStats, error)
}

type httpShardClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPShardClient talks JSON over HTTP to a storage node. The gateway
// shares one http.Client across all shards; the transport's per-host
// connection limits keep broad fan-outs from opening unbounded connections.
func NewHTTPShardClient(addr string, httpClient *http.Client) ShardClient {
	return &httpShardClient{
		baseURL:    "http://" + addr,
		httpClient: httpClient,
	}
}

func (c *httpShardClient) Probe(ctx context.Context) (model.NodeHealth, error) {
	var health model.NodeHealth
	err := c.get(ctx, "/health", &health)
	return health, err
}

func (c *httpShardClient) CreatePost(ctx context.Context, req model.CreatePostRequest) (model.Post, error) {
	var post model.Post
	err := c.post(ctx, "/posts", req, &post)
	return post, err
}

func (c *httpShardClient) CreateComment(ctx context.Context, postID string, req model.CreateCommentRequest) (model.Comment, error) {
	var comment model.Comment
	err := c.post(ctx, commentsPath(postID), req, &comment)
	return comment, err
}

func (c *httpShardClient) ListPosts(ctx context.Context) (model.PostList, error) {
	var list model.PostList
	err := c.get(ctx, "/posts", &list)
	return list, err
}

func (c *httpShardClient) ListComments(ctx context.Context, postID string) (model.CommentList, error) {
	var list model.CommentList
	err := c.get(ctx, commentsPath(postID), &list)
	return list, err
}

func (c *httpShardClient) Stats(ctx context.Context) (model.NodeStats, error) {
	var stats model.NodeStats
	err := c.get(ctx, "/stats", &stats)
	return stats, err
}

func commentsPath(postID string) string {
	return fmt.Sprintf("/posts/%s/comments", url.PathEscape(postID))
}

func (c *httpShardClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *httpShardClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *httpShardClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(model.ErrShardUnavailable, "%s %s: %s", req.Method, req.URL, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	if res.StatusCode >= 300 {
		return errors.Wrapf(model.ErrShardUnavailable, "%s %s: status %d", req.Method, req.URL, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
