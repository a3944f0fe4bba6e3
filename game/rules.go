package game

// WinRule is the pattern a card must complete to win the match
type WinRule string

const (
	FullCard     WinRule = "FULL_CARD"
	Line         WinRule = "LINE"
	Column       WinRule = "COLUMN"
	LineOrColumn WinRule = "LINE_OR_COLUMN"
)

// RuleInfo pairs a rule with its display text
type RuleInfo struct {
	Rule        WinRule `json:"rule"`
	Description string  `json:"description"`
}

var rules = []RuleInfo{
	{Rule: FullCard, Description: "Full card"},
	{Rule: Line, Description: "Line (5 numbers, excluding the FREE row)"},
	{Rule: Column, Description: "Column (5 numbers, excluding the FREE column)"},
	{Rule: LineOrColumn, Description: "Line or column, excluding the FREE row or column"},
}

// Rules lists every win rule in display order
func Rules() []RuleInfo {
	out := make([]RuleInfo, len(rules))
	copy(out, rules)
	return out
}

func (r WinRule) Valid() bool {
	for _, info := range rules {
		if info.Rule == r {
			return true
		}
	}
	return false
}

// Description returns the display text, or "" for an unknown rule
func (r WinRule) Description() string {
	for _, info := range rules {
		if info.Rule == r {
			return info.Description
		}
	}
	return ""
}
