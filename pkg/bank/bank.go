// Package bank loads suite files: reference models with their
// attachment validations, and the matcher expectations to run against
// them. Files are YAML or JSON.
package bank

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"digital.vasic.attachprobe/pkg/model"
	"digital.vasic.attachprobe/pkg/record"
)

// ErrInvalidSuite is returned when a suite file fails validation.
var ErrInvalidSuite = errors.New("invalid suite")

// Bank holds models and expectations loaded from suite files.
type Bank struct {
	mu           sync.RWMutex
	registry     *model.Registry
	schemas      map[string]map[string]*model.Schema // source -> model name
	expectations map[string]*Expectation
	order        []string
	sources      []string
}

// Option configures a Bank.
type Option func(*Bank)

// WithRegistry sets the validator registry used to build model
// validations.
func WithRegistry(r *model.Registry) Option {
	return func(b *Bank) {
		b.registry = r
	}
}

// New creates an empty Bank.
func New(opts ...Option) *Bank {
	b := &Bank{
		schemas:      make(map[string]map[string]*model.Schema),
		expectations: make(map[string]*Expectation),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = model.NewRegistry()
	}
	return b
}

// LoadFile validates and loads a suite file. Nothing is loaded when
// the file has problems.
func (b *Bank) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read suite file %s: %w", path, err)
	}
	file, err := parse(data)
	if err != nil {
		return fmt.Errorf("parse suite file %s: %w", path, err)
	}
	if errs := Validate(file, b.registry); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("%s: %w: %s",
			path, ErrInvalidSuite, strings.Join(msgs, "; "))
	}

	schemas := make(map[string]*model.Schema, len(file.Models))
	for _, def := range file.Models {
		s, err := BuildSchema(def, b.registry)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		schemas[def.Name] = s
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range file.Expectations {
		e := &file.Expectations[i]
		if _, exists := b.expectations[e.ID]; exists {
			return fmt.Errorf("%s: expectation %s already loaded", path, e.ID)
		}
	}
	b.schemas[path] = schemas
	for i := range file.Expectations {
		e := &file.Expectations[i]
		e.Source = path
		b.expectations[e.ID] = e
		b.order = append(b.order, e.ID)
	}
	b.sources = append(b.sources, path)
	return nil
}

// LoadDir loads every .yaml, .yml and .json file in dir. It does
// not recurse into subdirectories.
func (b *Bank) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read suite directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsSuiteFile(entry.Name()) {
			continue
		}
		if err := b.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// IsSuiteFile reports whether name has a suite file extension.
func IsSuiteFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Get retrieves an expectation by ID.
func (b *Bank) Get(id string) (*Expectation, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.expectations[id]
	return e, ok
}

// All returns every expectation in load order.
func (b *Bank) All() []*Expectation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]*Expectation, 0, len(b.order))
	for _, id := range b.order {
		result = append(result, b.expectations[id])
	}
	return result
}

// Schema returns the model schema named name as declared in the
// suite file at source. Models are scoped to their file, so two files
// may declare models with the same name.
func (b *Bank) Schema(source, name string) (*model.Schema, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.schemas[source][name]
	return s, ok
}

// Subject returns a factory building a fresh record of the
// expectation's model, taken from the expectation's own suite file,
// with its attributes applied.
func (b *Bank) Subject(e *Expectation) (record.Subject, error) {
	s, ok := b.Schema(e.Source, e.Model)
	if !ok {
		return record.Subject{}, fmt.Errorf("unknown model: %s", e.Model)
	}
	return record.Factory(s.Name(), func() record.Record {
		r := s.New()
		for k, v := range e.Attributes {
			r.Set(k, v)
		}
		return r
	}), nil
}

// Count returns the number of loaded expectations.
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.expectations)
}

// Sources returns the loaded file paths.
func (b *Bank) Sources() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]string, len(b.sources))
	copy(result, b.sources)
	return result
}

// BuildSchema turns a model definition into a schema, building each
// validator through reg.
func BuildSchema(def ModelDef, reg *model.Registry) (*model.Schema, error) {
	s := model.NewSchema(def.Name, def.Attachments...)
	for name, v := range def.Attributes {
		s.Attribute(name, v)
	}
	for _, vd := range def.Validations {
		v, err := reg.Build(vd.Kind, vd.Options)
		if err != nil {
			return nil, fmt.Errorf("model %s field %s: %w", def.Name, vd.Field, err)
		}
		val := model.Validation{
			Field:     vd.Field,
			Validator: v,
			Message:   vd.Message,
		}
		for _, c := range vd.On {
			val.On = append(val.On, record.Context(c))
		}
		if vd.If != "" {
			val.If = model.AttributeTruthy(vd.If)
		}
		if vd.Unless != "" {
			val.Unless = model.AttributeTruthy(vd.Unless)
		}
		s.Validates(val)
	}
	return s, nil
}
