// pre_processor.go implements the WGSL include pre-processor. Shader bodies stay small by
// pulling the uniform and instance struct declarations owned by the Go GPU types in with a
// single comment line:
//
//	//@oxy:include camera
//
// The pre-processor replaces the line with the registered source so the WGSL layout and the
// Go layout are declared in exactly one place.
package shader

import (
	"fmt"
	"sort"
	"strings"
)

// includePrefix marks an include directive. It must start the (trimmed) line.
const includePrefix = "//@oxy:include"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	includes map[string]string
}

// PreProcessor expands include directives in raw WGSL source.
type PreProcessor interface {
	// Process replaces every include directive with its registered source, expanding
	// directives inside included sources too. A name is expanded at most once per call;
	// later includes of the same name are dropped so shared structs are declared once.
	//
	// Parameters:
	//   - source: the raw WGSL shader source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: error if a directive is malformed or names an unknown include
	Process(source string) (string, error)

	// Includes lists the registered include names in sorted order.
	//
	// Returns:
	//   - []string: the include names
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption registers includes on a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithInclude registers the WGSL source expanded for an include name.
//
// Parameters:
//   - name: the include name used after the directive
//   - source: the WGSL source to inject
//
// Returns:
//   - PreProcessorOption: a function that registers the include
func WithInclude(name, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.includes[name] = source
	}
}

// NewPreProcessor creates a PreProcessor with the given includes registered.
//
// Parameters:
//   - options: the includes to register
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{includes: make(map[string]string)}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	var out []string
	if err := p.expand(source, "source", make(map[string]bool), &out); err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

// expand appends the lines of source to out, recursing into includes. An include is
// marked seen before its body is expanded, which also stops include cycles.
func (p *preProcessor) expand(source, origin string, seen map[string]bool, out *[]string) error {
	for i, line := range strings.Split(source, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), includePrefix)
		if !ok {
			*out = append(*out, line)
			continue
		}
		args := strings.Fields(rest)
		if len(args) != 1 {
			return fmt.Errorf("%s line %d: include takes exactly one name, got %d", origin, i+1, len(args))
		}
		name := args[0]
		src, ok := p.includes[name]
		if !ok {
			return fmt.Errorf("%s line %d: unknown include %q", origin, i+1, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		if err := p.expand(src, name, seen, out); err != nil {
			return err
		}
	}
	return nil
}

func (p *preProcessor) Includes() []string {
	names := make([]string, 0, len(p.includes))
	for name := range p.includes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
