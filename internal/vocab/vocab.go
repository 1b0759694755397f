// Package vocab holds the verb vocabulary the corrector trusts.
package vocab

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyVerb is returned when a vocabulary is built with a blank verb.
var ErrEmptyVerb = errors.New("vocabulary verb must not be empty")

// Vocabulary is an immutable, ordered set of first-level subcommands.
// Iteration order is insertion order; it decides ties in closest-match search.
type Vocabulary struct {
	verbs []string
	index map[string]struct{}
}

// New builds a vocabulary. Duplicates keep their first position.
func New(verbs ...string) (*Vocabulary, error) {
	v := &Vocabulary{
		verbs: make([]string, 0, len(verbs)),
		index: make(map[string]struct{}, len(verbs)),
	}
	for i, verb := range verbs {
		if strings.TrimSpace(verb) == "" {
			return nil, fmt.Errorf("verb #%d: %w", i+1, ErrEmptyVerb)
		}
		if _, dup := v.index[verb]; dup {
			continue
		}
		v.index[verb] = struct{}{}
		v.verbs = append(v.verbs, verb)
	}
	return v, nil
}

// MustNew is like New but panics on error. Meant for package-level literals.
func MustNew(verbs ...string) *Vocabulary {
	v, err := New(verbs...)
	if err != nil {
		panic(err)
	}
	return v
}

// Contains reports whether verb is a member.
func (v *Vocabulary) Contains(verb string) bool {
	_, ok := v.index[verb]
	return ok
}

// Verbs returns a copy of the verbs in insertion order.
func (v *Vocabulary) Verbs() []string {
	out := make([]string, len(v.verbs))
	copy(out, v.verbs)
	return out
}

// Len returns the number of verbs.
func (v *Vocabulary) Len() int {
	return len(v.verbs)
}

// dockerVerbs is the docker CLI's first-level command set.
var dockerVerbs = []string{
	"attach", "build", "builder", "checkpoint", "commit", "compose", "config", "container", "context",
	"cp", "create", "diff", "events", "exec", "export", "history", "image", "images", "import", "info",
	"inspect", "kill", "load", "login", "logout", "logs", "network", "pause", "port", "ps", "pull", "push",
	"rename", "restart", "rm", "rmi", "run", "save", "scan", "search", "secret", "service", "stack",
	"start", "stats", "stop", "swarm", "system", "tag", "top", "trust", "unpause", "update", "version",
	"volume", "wait",
}

var docker = MustNew(dockerVerbs...)

// Docker returns the built-in docker vocabulary. The value is shared and immutable.
func Docker() *Vocabulary {
	return docker
}
