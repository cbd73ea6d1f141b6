// Package rulelint checks PromQL expressions of Prometheus rule files.
package rulelint

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/yaml"
)

// RuleFile is a loaded Prometheus rule file.
type RuleFile struct {
	Name  string
	Rules []Rule

	// lines are source lines, used to map expression offsets to file positions.
	lines []string
}

// Rule is a recording or alerting rule.
type Rule struct {
	Group string
	// Name is a record or alert name.
	Name  string
	Alert bool
	Expr  string

	// Line and Column are position of expression value in the file, starting at 1.
	Line   int
	Column int
	// Style is a YAML style of expression value.
	Style yaml.Style
}

type (
	ruleNode struct {
		Record string    `yaml:"record"`
		Alert  string    `yaml:"alert"`
		Expr   yaml.Node `yaml:"expr"`
	}
	groupNode struct {
		Name  string     `yaml:"name"`
		Rules []ruleNode `yaml:"rules"`
	}
	fileNode struct {
		Groups []groupNode `yaml:"groups"`
	}
)

// ParseRuleFile parses Prometheus rule file.
func ParseRuleFile(name string, data []byte) (*RuleFile, error) {
	var root fileNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}

	f := &RuleFile{
		Name:  name,
		lines: strings.Split(string(data), "\n"),
	}
	for _, g := range root.Groups {
		for i, r := range g.Rules {
			rule := Rule{
				Group:  g.Name,
				Name:   r.Record,
				Expr:   r.Expr.Value,
				Line:   r.Expr.Line,
				Column: r.Expr.Column,
				Style:  r.Expr.Style,
			}
			if r.Alert != "" {
				rule.Name = r.Alert
				rule.Alert = true
			}

			switch {
			case rule.Name == "":
				return nil, errors.Errorf("group %q: rule %d: one of record or alert must be set", g.Name, i)
			case r.Record != "" && r.Alert != "":
				return nil, errors.Errorf("group %q: rule %q: only one of record or alert must be set", g.Name, rule.Name)
			case r.Expr.Kind == 0:
				return nil, errors.Errorf("group %q: rule %q: expr is missing", g.Name, rule.Name)
			case r.Expr.Kind != yaml.ScalarNode:
				return nil, errors.Errorf("line %d: group %q: rule %q: expr must be a string", r.Expr.Line, g.Name, rule.Name)
			}
			f.Rules = append(f.Rules, rule)
		}
	}
	return f, nil
}
