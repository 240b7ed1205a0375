package joke

import "strings"

var leadIns = []string{
	"Here's a joke for you:",
	"Here's a joke:",
	"Sure, here's a joke:",
	"Here you go:",
	"Here's one:",
	"Joke:",
}

var signOffs = []string{
	"Hope you enjoyed it!",
	"Hope that made you smile!",
	"I hope you found that funny!",
	"Did you like it?",
}

// CleanText strips the chatter models like to wrap around a joke and
// drops blank lines. The result is empty when nothing but chatter was returned.
func CleanText(raw string) string {
	s := strings.TrimSpace(raw)

	for _, p := range leadIns {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	for _, p := range signOffs {
		if len(s) >= len(p) && strings.EqualFold(s[len(s)-len(p):], p) {
			s = strings.TrimSpace(s[:len(s)-len(p)])
			break
		}
	}

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
