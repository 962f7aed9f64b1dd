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

import "github.com/pkg/errors"

var (
	// ErrShardUnavailable marks a failed probe or forward to a single shard.
	// Non-fatal: the shard is excluded from routing until it recovers.
	ErrShardUnavailable = errors.New("flock: shard unavailable")

	// ErrNoHealthyShard is returned when routing or aggregation has no
	// healthy shard to target. Surfaced to callers as service-unavailable.
	ErrNoHealthyShard = errors.New("flock: no healthy shard available")

	// ErrStorageWrite is returned when both the distributed backend and the
	// local fallback failed to persist a record. Fatal for that single
	// operation only.
	ErrStorageWrite = errors.New("flock: storage write failed")

	// ErrMalformedRecord marks a stored record that failed to parse on
	// read. Listings skip and log these, they never abort.
	ErrMalformedRecord = errors.New("flock: malformed record")
)
