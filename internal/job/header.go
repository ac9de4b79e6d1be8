package job

import (
	"fmt"
	"strings"

	"github.com/ma595/ffcx/internal/codegen"
	"github.com/ma595/ffcx/internal/codegen/cnodes"
	"github.com/ma595/ffcx/internal/permute"
)

const generatedHeader = "// Code generated by ffcx. DO NOT EDIT."

// Functions returns one C function per direction of j.
func Functions(j Job, defaults codegen.Options) ([]cnodes.Function, error) {
	dirs, err := j.Directions()
	if err != nil {
		return nil, err
	}
	opts, err := j.Options(defaults)
	if err != nil {
		return nil, err
	}
	resolved, err := opts.Resolve(len(j.Perm))
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", j.Name, err)
	}

	fns := make([]cnodes.Function, 0, len(dirs))
	for _, dir := range dirs {
		d, err := permute.Decompose(j.Perm, dir)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", j.Name, err)
		}
		body, err := codegen.EmitInPlace(cnodes.C, d, opts)
		if err != nil {
			return nil, fmt.Errorf("job %s %s: %w", j.Name, dir, err)
		}
		fns = append(fns, cnodes.Function{
			Name:   j.Name + "_" + dir.String(),
			Params: []cnodes.Param{{Type: resolved.ScalarType + "* restrict", Name: resolved.Array}},
			Body:   body,
			Header: describe(d, resolved),
		})
	}
	return fns, nil
}

func describe(d *permute.Decomposition, o codegen.Options) []string {
	lines := []string{
		fmt.Sprintf("%s permutation of length %d, cycles %d, moved %d.", d.Direction, d.N, d.Len(), d.Moved()),
	}
	if o.Rows > 1 {
		lines = append(lines, fmt.Sprintf("Applied to %d rows of stride %d.", o.Rows, o.RowStride))
	}
	return lines
}

// Source renders the complete header for j.
func Source(j Job, defaults codegen.Options) (string, error) {
	fns, err := Functions(j, defaults)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(generatedHeader)
	sb.WriteString("\n\n#pragma once\n")
	for _, fn := range fns {
		sb.WriteString("\n")
		sb.WriteString(fn.C())
	}
	return sb.String(), nil
}
