package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mirror/internal/layout"
	"github.com/roach88/mirror/internal/mirror"
)

// World is a loaded document: its declared types, a Reflector carrying its
// descriptions and leaf markers, and its named values.
type World struct {
	Name      string
	Source    string
	Scope     *layout.Scope
	Reflector *mirror.Reflector
	Root      string

	values map[string]any
	names  []string
}

// Value returns the named value.
func (w *World) Value(name string) (any, bool) {
	v, ok := w.values[name]
	return v, ok
}

// Names returns the value names in sorted order.
func (w *World) Names() []string {
	return append([]string(nil), w.names...)
}

// RootValue returns the value named by Root.
func (w *World) RootValue() (any, bool) {
	if w.Root == "" {
		return nil, false
	}
	return w.Value(w.Root)
}

// Option configures loading.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for loading and for the world's Reflector.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Load reads a world from path. Files ending in .cue and directories are
// read as CUE; everything else as YAML (which includes JSON).
func Load(path string, opts ...Option) (*World, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("world not found: %v", err)}
	}
	var w *World
	if info.IsDir() {
		w, err = loadCUEDir(path, opts)
	} else {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading world: %v", readErr)}
		}
		if filepath.Ext(path) == ".cue" {
			w, err = LoadCUE(data, path, opts...)
		} else {
			w, err = LoadYAML(data, path, opts...)
		}
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// LoadYAML builds a world from a YAML document. Unknown keys are rejected.
func LoadYAML(data []byte, source string, opts ...Option) (*World, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing %s: %v", source, err)}
	}
	return buildWorld(&doc, source, opts)
}

// LoadCUE builds a world from a single CUE file. The CUE value must be
// concrete; definitions and constraints in the file are checked first.
func LoadCUE(data []byte, source string, opts ...Option) (*World, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(source))
	return fromCUE(v, source, opts)
}

// loadCUEDir loads the CUE package in dir.
func loadCUEDir(dir string, opts []Option) (*World, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}
	return fromCUE(cuecontext.New().BuildInstance(inst), dir, opts)
}

func fromCUE(v cue.Value, source string, opts []Option) (*World, error) {
	if err := v.Err(); err != nil {
		return nil, cueLoadError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(err)
	}
	// CRITICAL: decode via JSON with UseNumber so integers stay integers.
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(err)
	}
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("decoding %s: %v", source, err)}
	}
	return buildWorld(&doc, source, opts)
}

func cueLoadError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeBuildFailed, Message: cueerrors.Details(err, nil)}
	if pos := cueerrors.Positions(err); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}

func buildWorld(doc *Document, source string, opts []Option) (*World, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	b := &builder{
		doc:    doc,
		scope:  layout.NewScope(),
		r:      mirror.NewReflector(mirror.WithLogger(o.logger)),
		logger: o.logger,
		values: make(map[string]any),
		state:  make(map[string]int),
	}
	w, err := b.build()
	if err != nil {
		return nil, err
	}
	w.Source = source
	return w, nil
}
