// Package corrector repairs free-form command lines aimed at a container CLI.
// It fixes a mistyped or missing program name and a mistyped first sub-command
// by fuzzy matching against a known verb vocabulary. Anything it cannot match
// with confidence is passed through untouched.
package corrector

import (
	"errors"
	"fmt"
	"strings"

	"opsdeck/internal/logger"
	"opsdeck/internal/shellparse"
	"opsdeck/internal/similarity"
	"opsdeck/internal/vocab"
)

// DefaultProgram is the program name expected as the first word.
const DefaultProgram = "docker"

// Notes surfaced when the input cannot be corrected at all.
const (
	NoteUnparsable = "Could not parse command; running verbatim."
	NoteEmpty      = "Empty command; nothing to run."
)

// ChangeKind identifies which correction was applied.
type ChangeKind int

const (
	// ProgramRenamed means the first word was replaced by the program name.
	ProgramRenamed ChangeKind = iota
	// ProgramInserted means the program name was prepended to a bare verb.
	ProgramInserted
	// VerbRenamed means the sub-command was replaced by a known verb.
	VerbRenamed
)

func (k ChangeKind) String() string {
	switch k {
	case ProgramRenamed:
		return "program-renamed"
	case ProgramInserted:
		return "program-inserted"
	case VerbRenamed:
		return "verb-renamed"
	default:
		return "unknown"
	}
}

// Change records a single correction.
type Change struct {
	Kind  ChangeKind
	From  string
	To    string
	Score float64
}

// sentence renders the advisory note sentence for the change.
func (c Change) sentence() string {
	switch c.Kind {
	case ProgramRenamed:
		return fmt.Sprintf("Auto-corrected '%s' → '%s'.", c.From, c.To)
	case ProgramInserted:
		return fmt.Sprintf("Inserted missing '%s' prefix.", c.To)
	case VerbRenamed:
		return fmt.Sprintf("Auto-corrected sub-command '%s' → '%s'.", c.From, c.To)
	default:
		return ""
	}
}

// Result is the outcome of one correction.
type Result struct {
	// Command is the command to execute. Empty means nothing should run.
	Command string
	// Note is the advisory text shown before execution; empty when nothing changed.
	Note string
	// Changes lists the applied corrections in order.
	Changes []Change
}

// Changed reports whether any correction was applied.
func (r Result) Changed() bool {
	return len(r.Changes) > 0
}

// Corrector holds the injected vocabulary and program name. It has no mutable
// state, so one value may serve concurrent callers.
type Corrector struct {
	program   string
	verbs     *vocab.Vocabulary
	threshold float64
	log       *logger.Logger
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithProgram sets the expected program name.
func WithProgram(name string) Option {
	return func(c *Corrector) {
		if name != "" {
			c.program = name
		}
	}
}

// WithVocabulary sets the trusted verb vocabulary.
func WithVocabulary(v *vocab.Vocabulary) Option {
	return func(c *Corrector) {
		if v != nil {
			c.verbs = v
		}
	}
}

// WithThreshold sets the similarity score a fix must exceed.
func WithThreshold(t float64) Option {
	return func(c *Corrector) {
		if t > 0 && t < 1 {
			c.threshold = t
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *logger.Logger) Option {
	return func(c *Corrector) {
		c.log = l
	}
}

// New creates a Corrector for the docker vocabulary unless options say otherwise.
func New(opts ...Option) *Corrector {
	c := &Corrector{
		program:   DefaultProgram,
		verbs:     vocab.Docker(),
		threshold: similarity.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Program returns the expected program name.
func (c *Corrector) Program() string {
	return c.program
}

// Correct tokenizes raw, repairs the program name and the sub-command, and
// returns the command to run with an advisory note. It never fails: input
// that cannot be parsed runs verbatim, empty input runs nothing.
func (c *Corrector) Correct(raw string) Result {
	tokens, err := shellparse.Tokenize(raw)
	if err != nil {
		var malformed *shellparse.MalformedInputError
		switch {
		case errors.Is(err, shellparse.ErrEmptyCommand):
			return Result{Note: NoteEmpty}
		case errors.As(err, &malformed):
			c.debug("input not parsable", "input", raw, "error", malformed.Err)
			return Result{Command: raw, Note: NoteUnparsable}
		default:
			c.debug("tokenize failed", "input", raw, "error", err)
			return Result{Command: raw, Note: NoteUnparsable}
		}
	}

	var changes []Change
	tokens, changes = c.fixProgram(tokens, changes)
	tokens, changes = c.fixVerb(tokens, changes)

	if len(changes) == 0 {
		return Result{Command: strings.TrimSpace(raw)}
	}

	var note strings.Builder
	for _, ch := range changes {
		note.WriteString(ch.sentence())
		note.WriteString("  ")
	}

	return Result{
		Command: shellparse.Join(tokens),
		Note:    strings.TrimSpace(note.String()),
		Changes: changes,
	}
}

// fixProgram checks the first word. Exact match wins outright; otherwise a
// close enough word is renamed, and failing that a bare verb gets the program
// prepended. At most one of the two fixes applies.
func (c *Corrector) fixProgram(tokens []shellparse.Token, changes []Change) ([]shellparse.Token, []Change) {
	first := tokens[0]
	if first.Operator || first.Value == c.program {
		return tokens, changes
	}

	if score := similarity.Ratio(first.Value, c.program); score > c.threshold {
		c.debug("program renamed", "from", first.Value, "to", c.program, "score", score)
		tokens[0] = shellparse.Word(c.program)
		return tokens, append(changes, Change{Kind: ProgramRenamed, From: first.Value, To: c.program, Score: score})
	}

	if c.verbs.Contains(first.Value) {
		c.debug("program inserted", "verb", first.Value)
		fixed := make([]shellparse.Token, 0, len(tokens)+1)
		fixed = append(fixed, shellparse.Word(c.program))
		fixed = append(fixed, tokens...)
		return fixed, append(changes, Change{Kind: ProgramInserted, To: c.program, Score: 1})
	}

	return tokens, changes
}

// fixVerb checks the second word once the program name is in place. Only the
// second token is ever touched.
func (c *Corrector) fixVerb(tokens []shellparse.Token, changes []Change) ([]shellparse.Token, []Change) {
	if len(tokens) < 2 || tokens[0].Operator || tokens[0].Value != c.program {
		return tokens, changes
	}
	sub := tokens[1]
	if sub.Operator || c.verbs.Contains(sub.Value) {
		return tokens, changes
	}

	candidate, _, ok := similarity.CloseMatch(sub.Value, c.verbs.Verbs(), c.threshold)
	if !ok {
		return tokens, changes
	}
	score := similarity.Ratio(sub.Value, candidate)
	if score <= c.threshold {
		c.debug("verb candidate rejected on rescore", "sub", sub.Value, "candidate", candidate, "score", score)
		return tokens, changes
	}

	c.debug("verb renamed", "from", sub.Value, "to", candidate, "score", score)
	tokens[1] = shellparse.Word(candidate)
	return tokens, append(changes, Change{Kind: VerbRenamed, From: sub.Value, To: candidate, Score: score})
}

func (c *Corrector) debug(msg string, keyvals ...any) {
	if c.log != nil {
		c.log.Debug(msg, keyvals...)
	}
}
