package session

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// Context is everything the loader resolved for one session. It is read-only
// after construction apart from the memoized arrangements, which are keyed
// lookups private to the session.
type Context struct {
	SessionID        string
	StudentID        string
	Exercise         *models.Exercise
	Assignment       *models.AssignedExercise
	IsLateSubmission bool
	StartedAt        time.Time
	// ResultID is fixed at load so a retried submission overwrites the same
	// record.
	ResultID string

	seed         uint64
	mu           sync.Mutex
	arrangements map[string][]int
}

func NewContext(sessionID, studentID string, exercise *models.Exercise, assignment *models.AssignedExercise, late bool, startedAt time.Time) *Context {
	return &Context{
		SessionID:        sessionID,
		StudentID:        studentID,
		Exercise:         exercise,
		Assignment:       assignment,
		IsLateSubmission: late,
		StartedAt:        startedAt,
		seed:             hash64(sessionID),
		arrangements:     make(map[string][]int),
	}
}

// AssignedExerciseID returns the assignment id, or nil for a direct session.
func (c *Context) AssignedExerciseID() *string {
	if c.Assignment == nil {
		return nil
	}
	id := c.Assignment.ID
	return &id
}

// Arrangement returns a permutation of [0, n) that is stable for the
// lifetime of the session and differs between sessions.
func (c *Context) Arrangement(key string, n int) []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if perm, ok := c.arrangements[key]; ok && len(perm) == n {
		return append([]int(nil), perm...)
	}
	r := rand.New(rand.NewPCG(c.seed, hash64(key)))
	perm := r.Perm(n)
	c.arrangements[key] = perm
	return append([]int(nil), perm...)
}

func hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
