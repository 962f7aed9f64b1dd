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
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/multierr"

	"github.com/flocknet/flock/common/process"
	"github.com/flocknet/flock/model"
)

// Server exposes one shard's store over HTTP. This is the surface the
// gateway probes and forwards to; nodes never call the gateway or each
// other.
type Server struct {
	log      *slog.Logger
	store    *Store
	server   *http.Server
	listener net.Listener
}

func NewServer(store *Store, bindAddress string) (*Server, error) {
	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return nil, err
	}

	s := &Server{
		log: slog.With(
			slog.String("component", "node-server"),
			slog.String("shard", store.ShardID()),
		),
		store:    store,
		listener: listener,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/health", s.handleHealth)
	router.Get("/stats", s.handleStats)
	router.Get("/posts", s.handleListPosts)
	router.Post("/posts", s.handleCreatePost)
	router.Get("/posts/{postID}/comments", s.handleListComments)
	router.Post("/posts/{postID}/comments", s.handleCreateComment)

	s.server = &http.Server{Handler: router}

	go process.DoWithLabels(map[string]string{
		"flock": "node-server",
		"shard": store.ShardID(),
	}, func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error(
				"Failed to serve",
				slog.Any("error", err),
			)
		}
	})

	s.log.Info(
		"Started storage node server",
		slog.String("addr", listener.Addr().String()),
	)
	return s, nil
}

func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.NodeHealth{
		ShardID:   s.store.ShardID(),
		Status:    "healthy",
		PostCount: s.store.PostCount(),
		Timestamp: model.FormatTimestamp(time.Now()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.NodeStats{
		ShardID:   s.store.ShardID(),
		PostCount: s.store.PostCount(),
		Backend:   s.store.BackendStats(),
	})
}

func (s *Server) handleListPosts(w http.ResponseWriter, _ *http.Request) {
	posts, err := s.store.ListPosts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, model.PostList{
		ShardID:    s.store.ShardID(),
		Posts:      posts,
		TotalCount: len(posts),
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Author == "" || req.Body == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing author or body")
		return
	}

	post, err := s.store.CreatePost(req.Author, req.Body)
	if err != nil {
		s.log.Error(
			"Failed to create post",
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	comments, err := s.store.ListComments(postID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CommentList{
		PostID:   postID,
		Comments: comments,
	})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCommentRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Author == "" || req.Body == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing author or body")
		return
	}

	comment, err := s.store.CreateComment(chi.URLParam(r, "postID"), req.Author, req.Body)
	if err != nil {
		s.log.Error(
			"Failed to create comment",
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) Close() error {
	return multierr.Combine(
		s.server.Close(),
		s.store.Close(),
	)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeErrorMessage(w, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
