// Package id generates identifiers for long-lived gateway objects.
//
// IDs are prefixed ULIDs ("task_01J..."): lexicographically sortable by
// creation time and readable in logs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TaskID identifies a background rename task
type TaskID string

// TaskPrefix is prepended to every TaskID
const TaskPrefix = "task"

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewTaskID generates a new task ID
func NewTaskID() TaskID {
	return TaskID(Default().GenerateWithPrefix(TaskPrefix))
}

func (id TaskID) String() string { return string(id) }

// ParseTaskID validates s and returns it as a TaskID
func ParseTaskID(s string) (TaskID, error) {
	raw, ok := strings.CutPrefix(s, TaskPrefix+"_")
	if !ok {
		return "", fmt.Errorf("task id %q: missing %q prefix", s, TaskPrefix+"_")
	}
	if _, err := ulid.Parse(raw); err != nil {
		return "", fmt.Errorf("task id %q: %w", s, err)
	}
	return TaskID(s), nil
}
