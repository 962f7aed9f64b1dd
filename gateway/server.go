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
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/flocknet/flock/common/process"
	"github.com/flocknet/flock/model"
)

type HealthResponse struct {
	GatewayStatus string        `json:"gateway_status"`
	Shards        []ShardStatus `json:"shards"`
}

type server struct {
	log      *slog.Logger
	gateway  *Gateway
	server   *http.Server
	listener net.Listener
}

func newServer(gateway *Gateway, bindAddress string) (*server, error) {
	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return nil, err
	}

	s := &server{
		log:      slog.With(slog.String("component", "gateway-server")),
		gateway:  gateway,
		listener: listener,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/health", s.handleHealth)
	router.Get("/api/posts", s.handleListPosts)
	router.Post("/api/posts", s.handleCreatePost)
	router.Get("/api/posts/{postID}/comments", s.handleListComments)
	router.Post("/api/posts/{postID}/comments", s.handleCreateComment)
	router.Get("/api/stats", s.handleStats)

	s.server = &http.Server{Handler: router}

	go process.DoWithLabels(map[string]string{
		"flock": "gateway-server",
	}, func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error(
				"Failed to serve",
				slog.Any("error", err),
			)
		}
	})

	s.log.Info(
		"Serving gateway API",
		slog.String("addr", listener.Addr().String()),
	)
	return s, nil
}

func (s *server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *server) Close() error {
	return s.server.Close()
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		GatewayStatus: "healthy",
		Shards:        s.gateway.registry.Snapshot(),
	})
}

func (s *server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	res, err := s.gateway.ListPosts(r.Context())
	if err != nil {
		s.writeRoutingError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Author == "" || req.Body == "" {
		s.writeError(w, http.StatusBadRequest, "missing author or body")
		return
	}

	res, err := s.gateway.CreatePost(r.Context(), req.Author, req.Body)
	if err != nil {
		s.writeRoutingError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}

func (s *server) handleListComments(w http.ResponseWriter, r *http.Request) {
	res, err := s.gateway.ListComments(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		s.writeRoutingError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Author == "" || req.Body == "" {
		s.writeError(w, http.StatusBadRequest, "missing author or body")
		return
	}

	res, err := s.gateway.CreateComment(r.Context(), chi.URLParam(r, "postID"), req.Author, req.Body)
	if err != nil {
		s.writeRoutingError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.gateway.Stats(r.Context()))
}

func (s *server) writeRoutingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNoHealthyShard):
		s.writeError(w, http.StatusServiceUnavailable, "no_healthy_shard")
	case errors.Is(err, model.ErrShardUnavailable):
		s.writeError(w, http.StatusBadGateway, "downstream_failure")
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
