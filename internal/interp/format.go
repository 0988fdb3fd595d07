package interp

import (
	"fmt"
	"strings"

	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

// execFormat interleaves Parts with the formatted forms of len(Parts)-1
// popped arguments, per spec.md §4.C.
func (in *Interp) execFormat(n ir.Format) error {
	argCount := len(n.Parts) - 1
	if argCount < 0 {
		argCount = 0
	}
	args, err := in.Stacks.PopN(argCount)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for i, part := range n.Parts {
		sb.WriteString(part)
		if i < len(args) {
			sb.WriteString(value.AsString(args[i]))
		}
	}
	in.Stacks.Push(value.FromString(sb.String()))
	return nil
}

// execMatchFormatPattern is Format's inverse: it matches a popped
// string against Parts and pushes the captured pieces in order.
func (in *Interp) execMatchFormatPattern(n ir.MatchFormatPattern) error {
	v, err := in.Stacks.Pop("format pattern target")
	if err != nil {
		return err
	}
	s := value.AsString(v)
	captures, merr := matchFormatParts(n.Parts, s)
	if merr != nil {
		return enginerr.NewRunError(in.Asm.Span(n.Span), merr.Error())
	}
	for _, c := range captures {
		in.Stacks.Push(value.FromString(c))
	}
	return nil
}

func matchFormatParts(parts []string, s string) ([]string, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty format pattern")
	}
	if !strings.HasPrefix(s, parts[0]) {
		return nil, fmt.Errorf("string does not match format pattern")
	}
	rest := s[len(parts[0]):]
	captures := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		part := parts[i]
		if i == len(parts)-1 {
			if part != "" && !strings.HasSuffix(rest, part) {
				return nil, fmt.Errorf("string does not match format pattern")
			}
			captures = append(captures, strings.TrimSuffix(rest, part))
			rest = ""
			continue
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return nil, fmt.Errorf("string does not match format pattern")
		}
		captures = append(captures, rest[:idx])
		rest = rest[idx+len(part):]
	}
	if rest != "" {
		return nil, fmt.Errorf("string does not match format pattern")
	}
	return captures, nil
}
