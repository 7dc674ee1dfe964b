package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/sparseknn/model"
	"github.com/hupe1980/sparseknn/vocab"
)

const (
	// DefaultMinKeyLength is the shortest feature key that is kept, in bytes.
	DefaultMinKeyLength = 5
	// DefaultMaxKeyLength is the length, in bytes, keys are truncated to before lookup.
	DefaultMaxKeyLength = 5
)

// ErrorPolicy selects how malformed feature tokens are handled.
type ErrorPolicy int

const (
	// SkipInvalid drops a malformed feature and keeps the rest of the line.
	SkipInvalid ErrorPolicy = iota
	// FailFast aborts parsing with a *ParseError.
	FailFast
)

func (p ErrorPolicy) String() string {
	switch p {
	case SkipInvalid:
		return "skip"
	case FailFast:
		return "fail"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// ParseErrorPolicy parses a policy name ("skip" or "fail").
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip", "":
		return SkipInvalid, nil
	case "fail", "fail-fast", "failfast":
		return FailFast, nil
	default:
		return 0, fmt.Errorf("unsupported error policy: %q", s)
	}
}

// ParseOptions configures line parsing.
type ParseOptions struct {
	// MinKeyLength drops keys shorter than this many bytes.
	MinKeyLength int
	// MaxKeyLength truncates longer keys to this many bytes. <= 0 disables truncation.
	MaxKeyLength int
	// L2Normalize divides every value by the L2 norm of the line's raw values.
	L2Normalize bool
	// Policy selects how malformed feature tokens are handled.
	Policy ErrorPolicy
}

// DefaultParseOptions returns the parse options of the reference command line tool.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		MinKeyLength: DefaultMinKeyLength,
		MaxKeyLength: DefaultMaxKeyLength,
		L2Normalize:  true,
		Policy:       SkipInvalid,
	}
}

// Stats counts features dropped while parsing.
type Stats struct {
	Lines           int64
	InvalidFeatures int64
	ShortKeys       int64
	UnknownFeatures int64
}

// Parser turns text lines into examples.
//
// A learning parser assigns ids to unseen keys and updates occurrence counts;
// a query parser only resolves known keys and drops the rest.
// Parser is safe for concurrent use.
type Parser struct {
	vocab *vocab.Vocabulary
	opts  ParseOptions
	learn bool

	lines   atomic.Int64
	invalid atomic.Int64
	short   atomic.Int64
	unknown atomic.Int64
}

// NewParser creates a Parser backed by v.
func NewParser(v *vocab.Vocabulary, opts ParseOptions, learn bool) *Parser {
	return &Parser{vocab: v, opts: opts, learn: learn}
}

// Learning reports whether the parser creates ids and updates counts.
func (p *Parser) Learning() bool { return p.learn }

// Stats returns a snapshot of the drop counters.
func (p *Parser) Stats() Stats {
	return Stats{
		Lines:           p.lines.Load(),
		InvalidFeatures: p.invalid.Load(),
		ShortKeys:       p.short.Load(),
		UnknownFeatures: p.unknown.Load(),
	}
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Parse parses one line of the form `<identifier> <category> <key>:<value> ...`.
// lineNo is only used for error reporting.
func (p *Parser) Parse(line string, lineNo int) (*model.Example, error) {
	fields := strings.FieldsFunc(line, isSeparator)
	if len(fields) == 0 {
		return nil, &ParseError{Line: lineNo, cause: ErrEmptyLine}
	}

	p.lines.Add(1)

	e := &model.Example{ID: fields[0]}
	if len(fields) < 2 {
		if p.opts.Policy == FailFast {
			return nil, &ParseError{Line: lineNo, cause: ErrMissingCategory}
		}
		return e, nil
	}
	e.Category = fields[1]

	tokens := fields[2:]
	features := make([]model.Feature, 0, len(tokens))
	var norm float64

	for _, tok := range tokens {
		key, value, err := splitFeature(tok)
		if err != nil {
			if p.opts.Policy == FailFast {
				return nil, &ParseError{Line: lineNo, Token: tok, cause: err}
			}
			p.invalid.Add(1)
			continue
		}

		if len(key) < p.opts.MinKeyLength {
			p.short.Add(1)
			continue
		}
		if p.opts.MaxKeyLength > 0 && len(key) > p.opts.MaxKeyLength {
			key = key[:p.opts.MaxKeyLength]
		}

		norm += value * value

		var id model.FeatureID
		if p.learn {
			id = p.vocab.InternLearn(key, value)
		} else {
			var ok bool
			if id, ok = p.vocab.Intern(key, false); !ok {
				p.unknown.Add(1)
				continue
			}
		}

		features = append(features, model.Feature{ID: id, Value: value})
	}

	if p.opts.L2Normalize && norm > 0 {
		norm = math.Sqrt(norm)
		for i := range features {
			features[i].Value /= norm
		}
	}

	e.Features = features
	e.Sort()

	return e, nil
}

// splitFeature splits a key:value token at the last separator.
func splitFeature(tok string) (string, float64, error) {
	sep := strings.LastIndexByte(tok, ':')
	if sep < 0 {
		return "", 0, fmt.Errorf("%w: missing ':' separator", ErrInvalidFeature)
	}

	value, err := strconv.ParseFloat(tok[sep+1:], 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrInvalidFeature, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", 0, fmt.Errorf("%w: non-finite value", ErrInvalidFeature)
	}

	return tok[:sep], value, nil
}
