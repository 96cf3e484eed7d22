// Package placeholder turns submitted form fields into ordered find-and-replace
// steps over {{field}} tokens.
//
// Substitution is single pass per key: once a token is replaced, the inserted
// value is never scanned again, so a value that itself looks like {{other}}
// stays literal. The plan is expressed as plain find/replace pairs so that a
// remote editor applying them strictly in order gives the same result as Apply.
package placeholder

import (
	"strconv"
	"strings"

	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// Replacement replaces every occurrence of Find with Replace.
type Replacement struct {
	Find    string
	Replace string
}

// Private-use code points delimiting markers. They are stripped from
// submitted values, so a value can never spell out another field's marker.
const (
	sentinelOpen  = "\uE000"
	sentinelClose = "\uE001"
)

var sentinelStripper = strings.NewReplacer(sentinelOpen, "", sentinelClose, "")

// Token returns the literal placeholder text for a field name.
func Token(key string) string {
	return "{{" + key + "}}"
}

func sentinel(i int) string {
	return sentinelOpen + strconv.Itoa(i) + sentinelClose
}

// Plan builds the replacements for responses in submission order.
// Every token is first swapped for a unique marker, then each marker for its
// value. When two responses share a key the first one wins, because its
// marker pass has already consumed the tokens. Marker code points are
// removed from values.
func Plan(responses []models.FieldResponse) []Replacement {
	plan := make([]Replacement, 0, 2*len(responses))
	for i, r := range responses {
		plan = append(plan, Replacement{Find: Token(r.Key), Replace: sentinel(i)})
	}
	for i, r := range responses {
		plan = append(plan, Replacement{Find: sentinel(i), Replace: sentinelStripper.Replace(r.Value)})
	}
	return plan
}

// Apply runs the plan over text, one replacement after the other.
func Apply(text string, plan []Replacement) string {
	for _, r := range plan {
		if r.Find == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.Find, r.Replace)
	}
	return text
}

// Substitute replaces the {{key}} tokens of text with the matching response values.
func Substitute(text string, responses []models.FieldResponse) string {
	return Apply(text, Plan(responses))
}
