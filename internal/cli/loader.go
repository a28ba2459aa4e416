package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/extsql/internal/compiler"
	"github.com/roach88/extsql/internal/entity"
	"github.com/roach88/extsql/internal/graph"
)

// Error code constants used by the CLI on top of the compiler's load codes.
const (
	ErrCodeGeneric     = compiler.ErrCodeGeneric
	ErrCodeNotFound    = compiler.ErrCodeNotFound
	ErrCodeWriteFailed = compiler.ErrCodeWriteFailed
	ErrCodeArchive     = "E008" // Archive open, save or read failed
)

// BuildResult is a manifest together with the plan built from it.
type BuildResult struct {
	Manifest    *compiler.Manifest
	Plan        *graph.Plan
	Fingerprint string
}

// resolveManifest picks the manifest path from the argument, falling back
// to the config file.
func resolveManifest(opts *RootOptions, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if opts.Config.Manifest != "" {
		return opts.Config.Manifest, nil
	}
	return "", &compiler.LoadError{
		Code:    ErrCodeNotFound,
		Message: "no manifest given: pass a path or set manifest in " + opts.configFile(),
	}
}

// LoadAndBuild loads the manifest at path, registers its descriptors and
// builds the plan. The first error stops the build.
func LoadAndBuild(path string) (*BuildResult, error) {
	m, err := compiler.LoadManifest(path)
	if err != nil {
		return nil, err
	}

	reg, err := m.Registry()
	if err != nil {
		return nil, err
	}

	plan, err := graph.Build(reg)
	if err != nil {
		return nil, err
	}

	fingerprint, err := entity.Fingerprint(reg.Descriptors())
	if err != nil {
		return nil, err
	}

	return &BuildResult{Manifest: m, Plan: plan, Fingerprint: fingerprint}, nil
}

// ErrorCode returns the code reported for err: the load code, the graph
// error code, or a code derived from the failing manifest field.
func ErrorCode(err error) string {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	if code := entity.CodeOf(err); code != "" {
		return string(code)
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field)
	}
	return ErrCodeGeneric
}

// ErrorMessage returns err's message without the code prefix that
// ErrorCode already reports.
func ErrorMessage(err error) string {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compileErr.Error()
	}
	var entityErr *entity.Error
	if errors.As(err, &entityErr) {
		return entityErr.Error()
	}
	return err.Error()
}

// MapFieldToErrorCode maps a compiler error field to a validation code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "extension", "extension.name":
		return compiler.ErrExtensionNameEmpty
	case "name":
		return compiler.ErrDescriptorNameEmpty
	case "requires":
		return compiler.ErrEmptyRefTarget
	default:
		return ErrCodeGeneric
	}
}

// buildFailure reports a load or build error and returns the matching
// exit error.
func buildFailure(formatter *OutputFormatter, err error) error {
	code := ErrorCode(err)
	message := ErrorMessage(err)

	var details any
	var entityErr *entity.Error
	if errors.As(err, &entityErr) {
		details = entityErr
	}

	return formatter.Fail(NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message)), code, message, details)
}
