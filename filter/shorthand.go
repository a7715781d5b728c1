package filter

import (
	"fmt"
	"regexp"
	"strings"
)

type rewrite struct {
	pattern *regexp.Regexp
	replace func(m []string) string
}

func negate(bang, expression string) string {
	if bang == "!" {
		return "not " + expression
	}
	return expression
}

// rewrites run in order; none of the patterns overlap
var rewrites = []rewrite{
	// merchant:"name" or merchant!:"name"
	{regexp.MustCompile(`\bmerchant(!?):"([^"]+)"`), func(m []string) string {
		return negate(m[1], fmt.Sprintf(`merchant(%q)`, m[2]))
	}},
	// mcc:"category"
	{regexp.MustCompile(`\bmcc(!?):"([^"]+)"`), func(m []string) string {
		return negate(m[1], fmt.Sprintf(`mcc(%q)`, m[2]))
	}},
	{regexp.MustCompile(`\bstate:(\w+)`), func(m []string) string {
		return fmt.Sprintf(`State == %q`, m[1])
	}},
	{regexp.MustCompile(`\btype:(\w+)`), func(m []string) string {
		return fmt.Sprintf(`Type == %q`, m[1])
	}},
	// amount:>25 or amount:<=9.99
	{regexp.MustCompile(`\bamount:(>=|<=|==|>|<)(\d+(?:\.\d+)?)`), func(m []string) string {
		return fmt.Sprintf(`Amount %s %s`, m[1], m[2])
	}},
	{regexp.MustCompile(`\bbefore:"(\d{4}-\d{2}-\d{2})"`), func(m []string) string {
		return fmt.Sprintf(`CreatedAt < parseDate(%q)`, m[1])
	}},
	{regexp.MustCompile(`\bafter:"(\d{4}-\d{2}-\d{2})"`), func(m []string) string {
		return fmt.Sprintf(`since(%q)`, m[1])
	}},
	{regexp.MustCompile(`\bdeclined:(true|false)`), func(m []string) string {
		return negate(map[string]string{"false": "!"}[m[1]], "declined()")
	}},
	{regexp.MustCompile(`\bpending:(true|false)`), func(m []string) string {
		return negate(map[string]string{"false": "!"}[m[1]], "pending()")
	}},
}

var shorthandKeys = []string{
	"merchant:", "merchant!:", "mcc:", "mcc!:", "state:", "type:",
	"amount:", "before:", "after:", "declined:", "pending:",
}

// ConvertShorthand rewrites the command-line shorthand into an expression,
// e.g. `merchant:"Shell" AND amount:>20` becomes
// `merchant("Shell") and Amount > 20`.
func ConvertShorthand(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	out := strings.ReplaceAll(s, " AND ", " and ")
	out = strings.ReplaceAll(out, " OR ", " or ")
	out = strings.ReplaceAll(out, "NOT ", "not ")

	for _, rw := range rewrites {
		out = rw.pattern.ReplaceAllStringFunc(out, func(match string) string {
			return rw.replace(rw.pattern.FindStringSubmatch(match))
		})
	}

	return out
}

// IsShorthand reports whether s uses the key:value shorthand
func IsShorthand(s string) bool {
	for _, key := range shorthandKeys {
		if strings.Contains(s, key) {
			return true
		}
	}
	return false
}
