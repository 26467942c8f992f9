package cli

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/mcwalk/internal/runspec"
)

//go:embed schema.cue
var schemaCUE string

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading a run spec from a directory.
type LoadResult struct {
	Spec      *runspec.RunSpec
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
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

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoRun       = "E007" // No run declaration in specs
	ErrCodeSchema      = "E101" // Run declaration violates the schema
	ErrCodeDecode      = "E102" // Run declaration cannot be decoded
)

// LoadRunSpec loads a run spec from a directory of CUE files, unifies it
// against the embedded schema, and decodes it.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadRunSpec(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	runVal := value.LookupPath(cue.ParsePath("run"))
	if !runVal.Exists() {
		errs = append(errs, &LoadError{Code: ErrCodeNoRun, Message: "no run declaration found in specs"})
		return result, errs
	}

	// Unify against the embedded schema; bounds like 0 < credMass < 1 live
	// in the schema, not in Go code.
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("compiling embedded schema: %v", err)})
		return result, errs
	}
	unified := runVal.Unify(schema.LookupPath(cue.ParsePath("#Run")))

	if err := unified.Validate(cue.Concrete(true)); err != nil {
		for _, cerr := range cueerrors.Errors(err) {
			errs = append(errs, &LoadError{
				Code:    ErrCodeSchema,
				Message: cerr.Error(),
				Pos:     cerr.Position(),
			})
			if mode == LoadModeFailFast {
				return result, errs
			}
		}
		return result, errs
	}

	var spec runspec.RunSpec
	if err := unified.Decode(&spec); err != nil {
		errs = append(errs, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding run spec: %v", err)})
		return result, errs
	}

	// Cross-field checks the schema cannot express (lengths must agree with
	// the model dimension).
	dim := len(spec.Model.Experiments)
	if len(spec.Model.Priors) != dim {
		errs = append(errs, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("model declares %d experiments but %d priors", dim, len(spec.Model.Priors))})
		if mode == LoadModeFailFast {
			return result, errs
		}
	}
	if len(spec.Sampler.Start) != dim {
		errs = append(errs, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("sampler.start has %d coordinates for a %d-dimension model", len(spec.Sampler.Start), dim)})
		if mode == LoadModeFailFast {
			return result, errs
		}
	}
	if len(spec.Sampler.StepSD) != dim {
		errs = append(errs, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("sampler.stepSD has %d entries for a %d-dimension model", len(spec.Sampler.StepSD), dim)})
		if mode == LoadModeFailFast {
			return result, errs
		}
	}

	if len(errs) == 0 {
		result.Spec = &spec
	}
	return result, errs
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
