package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/sturdy-go/engine/geometry"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps struct type argument keys to their embedded WGSL source.
	structRegistry map[AnnotationArg]string

	// includes accumulates the include annotations seen during the last Process call.
	includes []Annotation
}

// PreProcessor expands @sturdy: annotations in raw WGSL source.
type PreProcessor interface {
	// Process replaces every include annotation with the registered struct source.
	// Lines that are not annotations are copied through unchanged.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if any annotation is malformed or references an unknown type
	Process(source string) (string, error)

	// Includes returns the include annotations expanded by the most recent Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the expanded annotations
	Includes() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the geometry struct sources registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]string{
			AnnotationArgVertex:   geometry.VertexSource,
			AnnotationArgInstance: geometry.InstanceSource,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.includes = p.includes[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		src, ok := p.structRegistry[a.Args[0]]
		if !ok {
			return "", fmt.Errorf("line %d: unknown @sturdy include argument %q", i+1, a.Args[0])
		}
		out = append(out, src)
		p.includes = append(p.includes, *a)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []Annotation {
	return p.includes
}
