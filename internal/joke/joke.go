package joke

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

type Category string

const (
	Any         Category = ""
	General     Category = "general"
	Programming Category = "programming"
	DadJokes    Category = "dad-jokes"
	Puns        Category = "puns"
	Clean       Category = "clean"
)

// Categories is the canonical ordering; rankings use it to break ties.
var Categories = []Category{General, Programming, DadJokes, Puns, Clean}

func (c Category) String() string {
	if c == Any {
		return "any"
	}
	return string(c)
}

// Title renders a category for display, e.g. "dad-jokes" -> "Dad-Jokes".
func (c Category) Title() string {
	parts := strings.Split(c.String(), "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Rank is the position of c in the canonical ordering, or -1.
func (c Category) Rank() int {
	for i, k := range Categories {
		if c == k {
			return i
		}
	}
	return -1
}

// ParseCategory accepts a category name (case-insensitive); "" and "any" mean Any.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "any" || s == "random" {
		return Any, nil
	}
	c := Category(s)
	if !c.Valid() {
		return Any, fmt.Errorf("invalid category %q, must be one of: %s", s, strings.Join(CategoryNames(), ", "))
	}
	return c, nil
}

func CategoryNames() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}

// Resolve returns c, or a uniformly random category when c is Any.
func Resolve(c Category) Category {
	if c != Any {
		return c
	}
	return Categories[rand.IntN(len(Categories))]
}

// Joke is one generated joke. It is never persisted on its own.
type Joke struct {
	ID       string
	Text     string
	Category Category
	Model    string
}
