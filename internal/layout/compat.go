package layout

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed rules.yaml
var rulesYAML []byte

type nestingRules struct {
	ValidParents map[string][]string `yaml:"valid_parents"`
	Replaced     []string            `yaml:"replaced"`
	Inline       []string            `yaml:"inline"`
	Block        []string            `yaml:"block"`
}

type ruleSet struct {
	validParents map[string][]string
	replaced     map[string]bool
	inline       map[string]bool
	block        map[string]bool
}

var rules = mustLoadRules(rulesYAML)

func mustLoadRules(raw []byte) *ruleSet {
	var nr nestingRules
	if err := yaml.Unmarshal(raw, &nr); err != nil {
		panic(fmt.Sprintf("layout: embedded rules.yaml invalid: %v", err))
	}
	rs := &ruleSet{
		validParents: make(map[string][]string, len(nr.ValidParents)),
		replaced:     toSet(nr.Replaced),
		inline:       toSet(nr.Inline),
		block:        toSet(nr.Block),
	}
	for child, parents := range nr.ValidParents {
		rs.validParents[strings.ToLower(child)] = parents
	}
	return rs
}

func toSet(tags []string) map[string]bool {
	s := make(map[string]bool, len(tags))
	for _, t := range tags {
		s[strings.ToLower(t)] = true
	}
	return s
}

// DropViolation describes why a drop target was rejected. A nil violation
// means the drop is structurally valid.
type DropViolation struct {
	Reason       string   `json:"reason"`
	ValidParents []string `json:"validParents,omitempty"`
}

func (v *DropViolation) Error() string { return v.Reason }

// ValidateDrop checks whether childTag may become a child of parentTag.
// Violations are semantic warnings, not errors: the caller blocks the commit
// and tells the user, nothing more.
func ValidateDrop(childTag, parentTag string) *DropViolation {
	child := strings.ToLower(childTag)
	parent := strings.ToLower(parentTag)

	if rules.replaced[parent] {
		return &DropViolation{
			Reason: fmt.Sprintf("<%s> is a replaced element and cannot contain children", parent),
		}
	}

	if valid, restricted := rules.validParents[child]; restricted {
		for _, p := range valid {
			if p == parent {
				return nil
			}
		}
		return &DropViolation{
			Reason:       fmt.Sprintf("<%s> is only valid inside: %s", child, strings.Join(valid, ", ")),
			ValidParents: valid,
		}
	}

	if rules.block[child] && rules.inline[parent] {
		return &DropViolation{
			Reason: fmt.Sprintf("block-level <%s> cannot be placed inside inline <%s>", child, parent),
		}
	}

	return nil
}

// ValidParentsFor returns the restricted parent set for a tag, or nil when
// the tag may appear anywhere.
func ValidParentsFor(tag string) []string {
	return rules.validParents[strings.ToLower(tag)]
}
