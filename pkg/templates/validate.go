package templates

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ValidationResult reports the outcome of validating a template.
// Errors make the template invalid; missing and unused variables are
// warnings only.
type ValidationResult struct {
	IsValid          bool
	Errors           []string
	MissingVariables []string
	UnusedVariables  []string
}

var tokenRe = regexp.MustCompile(`\{\{-?\s*([^{}]+?)\s*-?\}\}`)

// control keywords are template actions, not variable references
var templateKeywords = map[string]struct{}{
	"end": {}, "else": {}, "break": {}, "continue": {},
}

// Validate compiles and renders all three bodies of the template against
// the supplied test variables (merged over declared defaults and samples).
// An empty rendered result counts as an error. Variable tokens referenced
// by the bodies are diffed against the resolvable set to report missing
// variables, and against the declared list to report unused declarations.
func (e *Engine) Validate(tmpl EmailTemplate, testVars map[string]any) ValidationResult {
	result := ValidationResult{}

	data := e.buildContext(&tmpl, testVars)
	for _, decl := range tmpl.Variables {
		if _, ok := data[decl.Name]; !ok && decl.Sample != "" {
			data[decl.Name] = decl.Sample
		}
	}

	bodies := []struct {
		name   string
		body   string
		render func(name, body string, data map[string]any) (string, error)
	}{
		{"subject", tmpl.Subject, renderText},
		{"html", injectCSS(tmpl.HTML, tmpl.CustomCSS), renderHTML},
		{"text", tmpl.Text, renderText},
	}

	for _, b := range bodies {
		out, err := b.render(b.name, b.body, data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", b.name, err))
			continue
		}
		if strings.TrimSpace(out) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: rendered result is empty", b.name))
		}
	}

	referenced := extractVariables(tmpl.Subject, tmpl.HTML, tmpl.Text)

	resolvable := map[string]struct{}{
		"Timestamp":   {},
		"Environment": {},
	}
	for name := range testVars {
		resolvable[name] = struct{}{}
	}
	for _, decl := range tmpl.Variables {
		if decl.Default != "" {
			resolvable[decl.Name] = struct{}{}
		}
	}

	for name := range referenced {
		if _, ok := resolvable[name]; !ok {
			result.MissingVariables = append(result.MissingVariables, name)
		}
	}

	for _, decl := range tmpl.Variables {
		if _, ok := referenced[decl.Name]; !ok {
			result.UnusedVariables = append(result.UnusedVariables, decl.Name)
		}
	}

	sort.Strings(result.MissingVariables)
	sort.Strings(result.UnusedVariables)
	result.IsValid = len(result.Errors) == 0
	return result
}

// extractVariables collects the plain variable tokens referenced by the
// bodies. Tokens containing a space or parenthesis are helper invocations
// or complex expressions and are skipped, as are template control keywords.
func extractVariables(bodies ...string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, body := range bodies {
		for _, m := range tokenRe.FindAllStringSubmatch(body, -1) {
			token := m[1]
			if strings.ContainsAny(token, " (") {
				continue
			}
			if _, keyword := templateKeywords[token]; keyword {
				continue
			}
			name := strings.TrimPrefix(token, ".")
			if name == "" {
				continue
			}
			out[name] = struct{}{}
		}
	}
	return out
}
