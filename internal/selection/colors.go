package selection

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/thetronjohnson/layrr/internal/dom"
)

// Transparent is the sentinel for a fully transparent computed color.
const Transparent = "transparent"

var rgbPattern = regexp.MustCompile(`rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*([0-9.]+)\s*)?\)`)

// pickColors reads the computed background and text colors off a node.
func pickColors(n *dom.Node) Colors {
	return Colors{
		Background: NormalizeColor(n.Style.BackgroundColor),
		Text:       NormalizeColor(n.Style.Color),
	}
}

// NormalizeColor converts a computed CSS color to lowercase hex. Existing hex
// passes through, rgb()/rgba() is converted, and transparent colors (keyword
// or zero alpha) normalize to the transparent sentinel. Anything else is
// returned as-is; the bridge copes with named colors.
func NormalizeColor(value string) string {
	v := strings.TrimSpace(strings.ToLower(value))
	switch {
	case v == "", v == Transparent:
		return Transparent
	case strings.HasPrefix(v, "#"):
		return v
	}

	m := rgbPattern.FindStringSubmatch(v)
	if m == nil {
		return v
	}
	if m[4] != "" {
		if alpha, err := strconv.ParseFloat(m[4], 64); err == nil && alpha == 0 {
			return Transparent
		}
	}
	r, _ := strconv.Atoi(m[1])
	g, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("#%02x%02x%02x", clampChannel(r), clampChannel(g), clampChannel(b))
}

func clampChannel(c int) int {
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return c
}
