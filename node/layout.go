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

import "path"

const storageRoot = "/flock"

// Layout computes the storage paths for one shard. Every record is written
// twice: once under the shard-private namespace and once under the shared
// global namespace. The global copy is redundancy only and is never read by
// normal query paths. The same layout applies verbatim to the local
// fallback store.
type Layout struct {
	ShardID string
}

func (l Layout) ShardRoot() string {
	return path.Join(storageRoot, "shard_"+l.ShardID)
}

func (l Layout) ShardPostsDir() string {
	return path.Join(l.ShardRoot(), "posts")
}

func (l Layout) ShardCommentsDir() string {
	return path.Join(l.ShardRoot(), "comments")
}

func (l Layout) GlobalPostsDir() string {
	return path.Join(storageRoot, "global", "posts")
}

func (l Layout) GlobalCommentsDir() string {
	return path.Join(storageRoot, "global", "comments")
}

// Dirs lists every namespace the node provisions at startup.
func (l Layout) Dirs() []string {
	return []string{
		l.ShardPostsDir(),
		l.ShardCommentsDir(),
		l.GlobalPostsDir(),
		l.GlobalCommentsDir(),
	}
}

func (Layout) RecordFile(dir, id string) string {
	return path.Join(dir, id+".json")
}
