// Package vocab interns textual feature keys into dense integer ids and tracks
// corpus-wide occurrence counts per id.
//
// # Thread Safety
//
// A Vocabulary is shared by every ingestion worker. All state (ids, reverse table,
// counts and the running total) is guarded by a single mutex. Vocabulary growth is
// a small share of the per-line parsing work, so one lock is enough.
package vocab

import (
	"math"
	"sync"

	"github.com/hupe1980/sparseknn/model"
)

// Vocabulary maps feature tokens to ids and ids to occurrence counts.
type Vocabulary struct {
	mu     sync.Mutex
	ids    map[string]model.FeatureID
	tokens []string
	counts []int64
	total  int64
}

// New creates an empty Vocabulary.
func New() *Vocabulary {
	return &Vocabulary{
		ids: make(map[string]model.FeatureID),
	}
}

// Intern resolves token to its id.
//
// If the token is unknown and create is false, ok is false and the caller drops the
// feature. If create is true, the next sequential id is assigned.
func (v *Vocabulary) Intern(token string, create bool) (model.FeatureID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.internLocked(token, create)
}

// InternLearn interns token with create=true and adds value to its occurrence
// count in the same critical section. This is the training path.
func (v *Vocabulary) InternLearn(token string, value float64) model.FeatureID {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, _ := v.internLocked(token, true)
	v.learnLocked(id, value)
	return id
}

// Learn adds the rounded value to the occurrence count of id.
// Unknown ids are ignored.
func (v *Vocabulary) Learn(id model.FeatureID, value float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if int(id) >= len(v.counts) {
		return
	}
	v.learnLocked(id, value)
}

func (v *Vocabulary) internLocked(token string, create bool) (model.FeatureID, bool) {
	if id, ok := v.ids[token]; ok {
		return id, true
	}
	if !create {
		return 0, false
	}

	id := model.FeatureID(len(v.tokens))
	v.ids[token] = id
	v.tokens = append(v.tokens, token)
	v.counts = append(v.counts, 0)
	return id, true
}

func (v *Vocabulary) learnLocked(id model.FeatureID, value float64) {
	n := int64(math.Round(value))
	v.counts[id] += n
	v.total += n
}

// Lookup returns the id of token without creating it.
func (v *Vocabulary) Lookup(token string) (model.FeatureID, bool) {
	return v.Intern(token, false)
}

// Token returns the token interned as id.
func (v *Vocabulary) Token(id model.FeatureID) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if int(id) >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Count returns the occurrence count of id.
func (v *Vocabulary) Count(id model.FeatureID) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if int(id) >= len(v.counts) {
		return 0
	}
	return v.counts[id]
}

// Total returns the sum of all occurrence counts.
func (v *Vocabulary) Total() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

// Len returns the number of interned tokens.
func (v *Vocabulary) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.tokens)
}

// Counts returns a copy of the per-id occurrence counts and their total.
func (v *Vocabulary) Counts() ([]int64, int64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]int64, len(v.counts))
	copy(out, v.counts)
	return out, v.total
}
