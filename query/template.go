package query

import (
	"regexp"

	"github.com/sirupsen/logrus"
)

// placeholderRe matches a whole-string parameter placeholder of the
// form ${param:NAME}.
var placeholderRe = regexp.MustCompile(`^\$\{param:([A-Za-z0-9_.-]+)\}$`)

// ResolveTemplate walks an arbitrary nested filter template and
// substitutes every ${param:NAME} placeholder with a freshly generated
// value, rebuilding maps and lists and passing scalars through. A
// placeholder whose sampled record lacks the requested field is omitted
// from the concrete filter (warn-logged); the query then runs with
// fewer effective conditions. An unknown NAME is fatal for the
// definition, as is a placeholder used with no specs configured at all.
func ResolveTemplate(tpl Document, specs map[string]*ParameterSpec, gen *Generator, scope CorrelationScope) (Document, error) {
	out := make(Document, len(tpl))
	for k, v := range tpl {
		rv, omit, err := resolveNode(v, specs, gen, scope)
		if err != nil {
			return nil, err
		}
		if omit {
			continue
		}
		out[k] = rv
	}
	return out, nil
}

func resolveNode(node Value, specs map[string]*ParameterSpec, gen *Generator, scope CorrelationScope) (Value, bool, error) {
	switch n := node.(type) {
	case string:
		m := placeholderRe.FindStringSubmatch(n)
		if m == nil {
			return n, false, nil
		}
		return resolvePlaceholder(m[1], specs, gen, scope)

	case map[string]interface{}:
		out := make(Document, len(n))
		for k, v := range n {
			rv, omit, err := resolveNode(v, specs, gen, scope)
			if err != nil {
				return nil, false, err
			}
			if omit {
				continue
			}
			out[k] = rv
		}
		return out, false, nil

	case []interface{}:
		out := make([]interface{}, 0, len(n))
		for _, v := range n {
			rv, omit, err := resolveNode(v, specs, gen, scope)
			if err != nil {
				return nil, false, err
			}
			if omit {
				continue
			}
			out = append(out, rv)
		}
		return out, false, nil

	default:
		return node, false, nil
	}
}

// CheckPlaceholders statically verifies that every ${param:NAME}
// placeholder in the template has a matching spec, without generating
// any values. Lets a broken definition be rejected before its first
// iteration.
func CheckPlaceholders(tpl Document, specs map[string]*ParameterSpec) error {
	for _, v := range tpl {
		if err := checkNode(v, specs); err != nil {
			return err
		}
	}
	return nil
}

func checkNode(node Value, specs map[string]*ParameterSpec) error {
	switch n := node.(type) {
	case string:
		m := placeholderRe.FindStringSubmatch(n)
		if m == nil {
			return nil
		}
		if len(specs) == 0 {
			return configErrorf("filter uses ${param:%s} but the definition has no parameter specs", m[1])
		}
		if _, ok := specs[m[1]]; !ok {
			return &UnknownParameterError{Name: m[1]}
		}
	case map[string]interface{}:
		for _, v := range n {
			if err := checkNode(v, specs); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, v := range n {
			if err := checkNode(v, specs); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolvePlaceholder(name string, specs map[string]*ParameterSpec, gen *Generator, scope CorrelationScope) (Value, bool, error) {
	if len(specs) == 0 {
		return nil, false, configErrorf("filter uses ${param:%s} but the definition has no parameter specs", name)
	}
	spec, ok := specs[name]
	if !ok {
		return nil, false, &UnknownParameterError{Name: name}
	}
	v, err := gen.Generate(spec, scope)
	if err != nil {
		if IsMissingField(err) {
			logrus.WithField("parameter", name).Warnf("%v, omitting filter field", err)
			return nil, true, nil
		}
		return nil, false, err
	}
	return v, false, nil
}
