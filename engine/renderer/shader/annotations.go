// annotations.go defines the include annotation understood by the WGSL pre-processor.
// An annotation is a single-line WGSL comment prefixed with @sturdy: that splices the
// canonical WGSL definition of a GPU struct into the shader, so shader inputs stay in
// lock-step with the Go types that are uploaded into the matching buffers.
package shader

import (
	"fmt"
	"slices"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@sturdy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site.
	//
	// Syntax: //@sturdy:include <struct_type>
	//
	// Example: //@sturdy:include vertex
	annotationTypeInclude AnnotationType = "include"
)

// Annotation represents a single parsed @sturdy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. For include, [0] is the struct type key.
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source. Used for error reporting.
	Line int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

const (
	// AnnotationArgVertex identifies the VertexInput struct matching geometry.Vertex.
	// Source: engine/geometry/assets/vertex.wgsl
	AnnotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgInstance identifies the InstanceInput struct matching geometry.InstanceRecord.
	// Source: engine/geometry/assets/instance.wgsl
	AnnotationArgInstance AnnotationArg = "instance"
)

// validStructTypes lists every AnnotationArg accepted by include annotations.
var validStructTypes = []AnnotationArg{
	AnnotationArgVertex,
	AnnotationArgInstance,
}

// parseAnnotation attempts to parse a single line of WGSL source as a @sturdy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @sturdy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @sturdy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @sturdy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @sturdy annotation type %q", lineNum, args[0])
	}
}
