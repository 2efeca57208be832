package ux

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

// Casing is the capitalisation style of a label.
type Casing string

const (
	CasingNone     Casing = ""
	CasingUpper    Casing = "UPPER"
	CasingLower    Casing = "lower"
	CasingTitle    Casing = "Title"
	CasingSentence Casing = "Sentence"
	CasingMixed    Casing = "Mixed"
)

func isAcronym(w string) bool {
	n := 0
	for _, r := range w {
		if !unicode.IsUpper(r) {
			return false
		}
		n++
	}
	return n >= 2 && n <= 4
}

// ClassifyCasing returns the casing style of text. Acronyms of two to four
// capitals are ignored; a label that is a single capitalised word, or only
// acronyms, has no distinguishing style and returns CasingNone.
func ClassifyCasing(text string) Casing {
	fields := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	var words []string
	acronyms := 0
	for _, f := range fields {
		if isAcronym(f) {
			acronyms++
			continue
		}
		words = append(words, f)
	}
	if len(words) == 0 {
		if acronyms >= 2 {
			return CasingUpper
		}
		return CasingNone
	}

	upper, lower, capital := 0, 0, 0
	for _, w := range words {
		switch {
		case strings.ToLower(w) == w:
			lower++
		case isCapitalised(w):
			capital++
		case strings.ToUpper(w) == w:
			upper++
		}
	}
	n := len(words)
	switch {
	case upper == n:
		return CasingUpper
	case lower == n:
		return CasingLower
	case n == 1 && capital == 1:
		return CasingNone
	case capital == n:
		return CasingTitle
	case isCapitalised(words[0]) && lower == n-1:
		return CasingSentence
	}
	return CasingMixed
}

func isCapitalised(w string) bool {
	r := []rune(w)
	return unicode.IsUpper(r[0]) && strings.ToLower(string(r[1:])) == string(r[1:])
}

func checkCasing(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, g := range ctx.Tree.SiblingGroups() {
		styles := make(map[Casing][]*widget.Node)
		var order []Casing
		for _, b := range buttons(g) {
			c := ClassifyCasing(b.Text)
			if c == CasingNone {
				continue
			}
			if _, seen := styles[c]; !seen {
				order = append(order, c)
			}
			styles[c] = append(styles[c], b)
		}
		if len(order) < 2 {
			continue
		}

		majority := order[0]
		for _, c := range order[1:] {
			if len(styles[c]) > len(styles[majority]) {
				majority = c
			}
		}
		var summary []string
		for _, c := range order {
			summary = append(summary, fmt.Sprintf("%s: %d", c, len(styles[c])))
		}

		first := true
		for _, b := range buttons(g) {
			c := ClassifyCasing(b.Text)
			if c == CasingNone || c == majority {
				continue
			}
			desc := fmt.Sprintf("%q uses %s casing while most buttons here use %s.", b.ID, c, majority)
			if first {
				desc = fmt.Sprintf("Buttons in %q mix casing styles (%s). %s", g.Parent.ID, strings.Join(summary, ", "), desc)
				first = false
			}
			out = append(out, casingMeta.Violation(b.ID, desc,
				fmt.Sprintf("Rewrite %q in %s case to match its siblings.", b.Text, majority)))
		}
	}
	return out, nil
}
