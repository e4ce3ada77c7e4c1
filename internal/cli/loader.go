package cli

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/splay/internal/spec"
)

//go:embed schema.cue
var schemaCUE string

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // generic/unknown error
	ErrCodeNotFound     = "E002" // path not found
	ErrCodeNoFiles      = "E003" // no spec files found
	ErrCodeLoadFailed   = "E004" // CUE/JSON load failed
	ErrCodeBuildFailed  = "E005" // CUE build failed
	ErrCodeSchema       = "E006" // schema violation
	ErrCodeDecodeFailed = "E007" // decoding into the spec types failed

	// ErrCodeSpecInvalid marks semantic spec validation failures:
	// duplicate ids, dangling references, malformed expressions.
	ErrCodeSpecInvalid = "E101"
)

// LoadError is an error raised while loading a game spec.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadGameSpec loads a game spec from a .cue file, a .json file, or a
// directory of CUE files, checks it against the embedded schema, and
// runs full semantic validation. CUE sources carry the spec under a
// top-level "game" field; JSON files hold the spec object directly.
//
// All schema and validation errors are collected rather than fail-fast
// so authors can fix a spec in one round trip.
func LoadGameSpec(path string) (*spec.GameSpec, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("spec path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing spec path: %v", err)}}
	}

	ctx := cuecontext.New()
	var gameVal cue.Value

	switch {
	case info.IsDir():
		files, err := FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(files) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
		}
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
		}
		inst := instances[0]
		if inst.Err != nil {
			return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
		}
		value := ctx.BuildInstance(inst)
		if err := value.Err(); err != nil {
			return nil, cueErrors(ErrCodeBuildFailed, err)
		}
		gameVal = value.LookupPath(cue.ParsePath("game"))

	case filepath.Ext(path) == ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}}
		}
		expr, err := cuejson.Extract(path, data)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}}
		}
		gameVal = ctx.BuildExpr(expr)
		if err := gameVal.Err(); err != nil {
			return nil, cueErrors(ErrCodeBuildFailed, err)
		}

	case filepath.Ext(path) == ".cue":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}}
		}
		value := ctx.CompileBytes(data, cue.Filename(path))
		if err := value.Err(); err != nil {
			return nil, cueErrors(ErrCodeBuildFailed, err)
		}
		gameVal = value.LookupPath(cue.ParsePath("game"))

	default:
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("unsupported spec file %s: want .cue, .json, or a directory", path)}}
	}

	if !gameVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: "spec has no top-level \"game\" field"}}
	}

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	schemaDef := schema.LookupPath(cue.ParsePath("#GameSpec"))
	if err := schemaDef.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("embedded schema is broken: %v", err)}}
	}

	unified := gameVal.Unify(schemaDef)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueErrors(ErrCodeSchema, err)
	}

	data, err := unified.MarshalJSON()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("exporting spec: %v", err)}}
	}
	var gs spec.GameSpec
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding spec: %v", err)}}
	}

	if verrs := gs.Validate(); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, verr := range verrs {
			errs[i] = &LoadError{Code: ErrCodeSpecInvalid, Message: verr.Error()}
		}
		return &gs, errs
	}
	return &gs, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// cueErrors expands a CUE error into one LoadError per underlying
// error, preserving source positions.
func cueErrors(code string, err error) []error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return []error{&LoadError{Code: code, Message: err.Error()}}
	}
	errs := make([]error, len(list))
	for i, e := range list {
		errs[i] = &LoadError{Code: code, Message: e.Error(), Pos: e.Position()}
	}
	return errs
}
