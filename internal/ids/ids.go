// Package ids generates and validates the prefixed identifiers used
// across the system (triggers, runs, attempts, projects).
//
// An id looks like "trig_0042018f2e4c3a7b9...": a type prefix, a 4-digit
// shard derived from the owning project, and a UUIDv7 suffix so ids
// within a shard sort by creation time.
package ids

import (
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
)

const shardCount = 10000

// Prefixes for every id-carrying model.
const (
	TriggerPrefix = "trig"
	RunPrefix     = "run"
	AttemptPrefix = "att"
	ProjectPrefix = "prj"
)

// Shard maps a project id onto its 4-digit shard.
func Shard(projectID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(projectID))
	return h.Sum32() % shardCount
}

func generate(prefix string, shard uint32) string {
	u := uuid.Must(uuid.NewV7())
	return fmt.Sprintf("%s_%04d%s", prefix, shard, hex.EncodeToString(u[:]))
}

// NewTriggerID mints a trigger id on the project's shard.
func NewTriggerID(projectID string) string {
	return generate(TriggerPrefix, Shard(projectID))
}

// NewRunID mints a run id on the project's shard.
func NewRunID(projectID string) string {
	return generate(RunPrefix, Shard(projectID))
}

// NewAttemptID mints an attempt id on the project's shard.
func NewAttemptID(projectID string) string {
	return generate(AttemptPrefix, Shard(projectID))
}

// NewProjectID mints a project id. Projects shard on their own identity,
// so the shard comes from the fresh UUID rather than a parent.
func NewProjectID() string {
	u := uuid.Must(uuid.NewV7())
	suffix := hex.EncodeToString(u[:])
	return fmt.Sprintf("%s_%04d%s", ProjectPrefix, Shard(suffix), suffix)
}

// HasPrefix reports whether id carries the given type prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}

// Valid reports whether id is well-formed: a known prefix, a 4-digit
// shard, and a 32-hex-char suffix.
func Valid(id string) bool {
	prefix, rest, found := strings.Cut(id, "_")
	if !found {
		return false
	}
	switch prefix {
	case TriggerPrefix, RunPrefix, AttemptPrefix, ProjectPrefix:
	default:
		return false
	}
	if len(rest) != 4+32 {
		return false
	}
	for _, c := range rest[:4] {
		if c < '0' || c > '9' {
			return false
		}
	}
	_, err := hex.DecodeString(rest[4:])
	return err == nil
}
