// Package parser turns platform JSON responses into model records.
//
// Responses carry a "type" discriminator. The parser reads it with gjson,
// checks the keys that kind cannot do without, then decodes the payload into
// the matching record. Fields that may hold any record (list data, user data
// points, workflow configurations) go back through the same dispatch.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/s0up4200/cardctl/model"
)

var (
	ErrMalformed      = errors.New("malformed JSON")
	ErrMissingKey     = errors.New("missing mandatory key")
	ErrUnknownKind    = errors.New("unknown record type")
	ErrUnexpectedKind = errors.New("unexpected record type")
)

// ParseError describes why a response could not be decoded
type ParseError struct {
	Kind string
	Key  string
	Err  error
}

func (e *ParseError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "response"
	}
	if e.Key != "" {
		return fmt.Sprintf("parse %s: %v %q", kind, e.Err, e.Key)
	}
	return fmt.Sprintf("parse %s: %v", kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser decodes tagged JSON into model records
type Parser struct {
	logger   zerolog.Logger
	registry map[string]entry
}

// New returns a parser that knows every model kind
func New(logger zerolog.Logger) *Parser {
	return &Parser{
		logger:   logger.With().Str("component", "parser").Logger(),
		registry: defaultRegistry(),
	}
}

// Kinds returns the registered discriminators in sorted order
func (p *Parser) Kinds() []string {
	kinds := make([]string, 0, len(p.registry))
	for k := range p.registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Parse decodes data into whichever record its "type" names
func (p *Parser) Parse(data []byte) (model.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, p.fail(&ParseError{Err: ErrMalformed})
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return nil, p.fail(&ParseError{Err: fmt.Errorf("%w: expected an object", ErrMalformed)})
	}

	rec, err := p.parse(r)
	if err != nil {
		return nil, p.fail(err)
	}
	return rec, nil
}

// Decode parses data and requires the result to be a T
func Decode[T model.Record](p *Parser, data []byte) (T, error) {
	var zero T
	rec, err := p.Parse(data)
	if err != nil {
		return zero, err
	}
	v, ok := rec.(T)
	if !ok {
		return zero, p.fail(&ParseError{
			Kind: rec.Kind(),
			Err:  fmt.Errorf("%w: want %s", ErrUnexpectedKind, zero.Kind()),
		})
	}
	return v, nil
}

// DecodeList parses a list response whose elements must all be T
func DecodeList[T model.Record](p *Parser, data []byte) ([]T, error) {
	list, err := Decode[model.List](p, data)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(list.Data))
	for _, rec := range list.Data {
		v, ok := rec.(T)
		if !ok {
			var zero T
			return nil, p.fail(&ParseError{
				Kind: rec.Kind(),
				Err:  fmt.Errorf("%w in list: want %s", ErrUnexpectedKind, zero.Kind()),
			})
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *Parser) fail(err error) error {
	event := p.logger.Warn().Err(err)
	var pe *ParseError
	if errors.As(err, &pe) {
		event = event.Str("kind", pe.Kind).Str("key", pe.Key)
	}
	event.Msg("Failed to parse response")
	return err
}

func (p *Parser) parse(r gjson.Result) (model.Record, error) {
	kind := r.Get("type").String()
	if kind == "" {
		return nil, &ParseError{Key: "type", Err: ErrMissingKey}
	}
	return p.decodeKind(kind, r)
}

func (p *Parser) decodeKind(kind string, r gjson.Result) (model.Record, error) {
	e, ok := p.registry[kind]
	if !ok {
		return nil, &ParseError{Kind: kind, Err: ErrUnknownKind}
	}
	if err := p.validate(kind, r); err != nil {
		return nil, err
	}

	rec, err := e.decode(p, []byte(r.Raw))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &ParseError{Kind: kind, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	return rec, nil
}

// validate checks the mandatory keys of kind and of any nested records
func (p *Parser) validate(kind string, r gjson.Result) error {
	e, ok := p.registry[kind]
	if !ok {
		return nil
	}

	for _, key := range e.required {
		v := r.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			return &ParseError{Kind: kind, Key: key, Err: ErrMissingKey}
		}
	}

	for _, n := range e.nested {
		v := r.Get(n.path)
		switch {
		case v.IsArray():
			for _, item := range v.Array() {
				if !item.IsObject() {
					continue
				}
				if err := p.validate(n.kind, item); err != nil {
					return err
				}
			}
		case v.IsObject():
			if err := p.validate(n.kind, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeAs decodes a field that must hold the expected kind. The "type" key
// may be omitted on nested objects.
func (p *Parser) decodeAs(expected string, raw json.RawMessage) (model.Record, error) {
	r := gjson.ParseBytes(raw)
	kind := r.Get("type").String()
	if kind == "" {
		kind = expected
	}
	if kind != expected {
		return nil, &ParseError{
			Kind: kind,
			Err:  fmt.Errorf("%w: want %s", ErrUnexpectedKind, expected),
		}
	}
	return p.decodeKind(kind, r)
}

// decodeAny decodes a field that may hold any registered record
func (p *Parser) decodeAny(raw json.RawMessage) (model.Record, error) {
	r := gjson.ParseBytes(raw)
	if !r.IsObject() {
		return nil, &ParseError{Err: fmt.Errorf("%w: expected an object", ErrMalformed)}
	}
	return p.parse(r)
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
