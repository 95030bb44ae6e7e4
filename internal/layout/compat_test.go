package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDropRestrictedParents(t *testing.T) {
	tests := []struct {
		child, parent string
		valid         bool
	}{
		{"li", "ul", true},
		{"li", "ol", true},
		{"li", "menu", true},
		{"li", "div", false},
		{"tr", "table", true},
		{"tr", "tbody", true},
		{"tr", "div", false},
		{"td", "tr", true},
		{"td", "table", false},
		{"option", "select", true},
		{"option", "optgroup", true},
		{"option", "datalist", true},
		{"option", "div", false},
		{"dd", "dl", true},
		{"dd", "section", false},
	}
	for _, tt := range tests {
		v := ValidateDrop(tt.child, tt.parent)
		if tt.valid {
			assert.Nil(t, v, "%s into %s should be valid", tt.child, tt.parent)
		} else {
			assert.NotNil(t, v, "%s into %s should be rejected", tt.child, tt.parent)
		}
	}
}

func TestValidateDropCitesValidParentSet(t *testing.T) {
	// Dropping a TD onto a DIV names TD's allowed parents.
	v := ValidateDrop("td", "div")
	require.NotNil(t, v)
	assert.Equal(t, []string{"tr"}, v.ValidParents)
	assert.Contains(t, v.Reason, "<td>")
	assert.Contains(t, v.Reason, "tr")
}

func TestValidateDropReplacedTargets(t *testing.T) {
	for _, parent := range []string{"img", "input", "br", "hr", "embed", "object", "video", "audio", "canvas", "iframe"} {
		v := ValidateDrop("div", parent)
		require.NotNil(t, v, "dropping into <%s> must be rejected", parent)
		assert.Contains(t, v.Reason, "replaced")
	}
}

func TestValidateDropBlockInInline(t *testing.T) {
	assert.NotNil(t, ValidateDrop("div", "span"))
	assert.NotNil(t, ValidateDrop("p", "em"))
	assert.Nil(t, ValidateDrop("span", "span"), "inline in inline is fine")
	assert.Nil(t, ValidateDrop("div", "div"))
}

func TestValidateDropCaseInsensitive(t *testing.T) {
	assert.Nil(t, ValidateDrop("LI", "UL"))
	assert.NotNil(t, ValidateDrop("TD", "DIV"))
}

func TestValidParentsFor(t *testing.T) {
	assert.Equal(t, []string{"ul", "ol", "menu"}, ValidParentsFor("li"))
	assert.Nil(t, ValidParentsFor("div"))
}
