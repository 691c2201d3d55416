package host

import (
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/questline/modbridge/errors"
)

// sigPattern matches "func(name: type, ...) -> result". The result may be a
// single type or a parenthesized list.
var sigPattern = regexp.MustCompile(`^func\s*\(([^)]*)\)(?:\s*->\s*(.+))?$`)

// parseSignature parses a declared trampoline signature and returns the
// flattened core value types each side of the call carries.
func parseSignature(sig string) (params, results []api.ValueType, err error) {
	m := sigPattern.FindStringSubmatch(strings.TrimSpace(sig))
	if m == nil {
		return nil, nil, errors.InvalidInput(errors.PhaseRegister, "malformed signature "+sig)
	}

	if p := strings.TrimSpace(m[1]); p != "" {
		for _, part := range splitParams(p) {
			typStr := part
			if idx := strings.LastIndex(part, ":"); idx != -1 {
				typStr = strings.TrimSpace(part[idx+1:])
			}
			flat, err := flattenWitType(typStr)
			if err != nil {
				return nil, nil, err
			}
			params = append(params, flat...)
		}
	}

	if r := strings.TrimSpace(m[2]); r != "" && r != "()" {
		items := []string{r}
		if strings.HasPrefix(r, "(") && strings.HasSuffix(r, ")") {
			items = splitParams(strings.TrimSuffix(strings.TrimPrefix(r, "("), ")"))
		}
		for _, item := range items {
			flat, err := flattenWitType(strings.TrimSpace(item))
			if err != nil {
				return nil, nil, err
			}
			results = append(results, flat...)
		}
	}

	return params, results, nil
}

// splitParams splits a comma-separated list, respecting nested parens.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}
	return result
}

// flattenWitType maps a declared type to the core value types it occupies on
// the call stack. Records and enums never appear here: they travel through
// return pointers, which are declared as u32 in the signature.
func flattenWitType(s string) ([]api.ValueType, error) {
	t, err := wit.ParseType(s)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRegister, errors.KindInvalidData, err, "parse type "+s)
	}

	switch t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return []api.ValueType{api.ValueTypeI32}, nil
	case wit.U64, wit.S64:
		return []api.ValueType{api.ValueTypeI64}, nil
	case wit.F32:
		return []api.ValueType{api.ValueTypeF32}, nil
	case wit.F64:
		return []api.ValueType{api.ValueTypeF64}, nil
	case wit.String:
		return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil
	default:
		return nil, errors.Unsupported(errors.PhaseRegister, "type "+s+" cannot travel flat; pass it through a return pointer")
	}
}
