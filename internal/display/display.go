// Package display renders jokes, the statistics dashboard and errors for a
// terminal. Styling degrades to plain text when the writer is not a TTY.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"joke-cli/internal/analytics"
	"joke-cli/internal/apperr"
	"joke-cli/internal/joke"
)

var (
	accent  = lipgloss.Color("#8BC34A")
	info    = lipgloss.Color("#2196F3")
	warning = lipgloss.Color("#FFC107")
	danger  = lipgloss.Color("#e53935")
	muted   = lipgloss.Color("#8a94a6")
)

// Printer writes styled output to one writer.
type Printer struct {
	w io.Writer

	title   lipgloss.Style
	label   lipgloss.Style
	body    lipgloss.Style
	faint   lipgloss.Style
	errText lipgloss.Style
	warn    lipgloss.Style
	good    lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(accent),
		label:   r.NewStyle().Foreground(info),
		body:    r.NewStyle().PaddingLeft(2),
		faint:   r.NewStyle().Foreground(muted),
		errText: r.NewStyle().Bold(true).Foreground(danger),
		warn:    r.NewStyle().Foreground(warning),
		good:    r.NewStyle().Foreground(accent),
	}
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

// Joke shows the joke text and the category it was generated for.
func (p *Printer) Joke(j joke.Joke) {
	p.println(p.title.Render("🎭 Joke of the Day 🎭"))
	p.println("")
	p.println(p.body.Render(j.Text))
	p.println("")
	p.println(p.label.Render("Category: " + j.Category.Title()))
}

func (p *Printer) Thanks() {
	p.println(p.good.Render("Thanks for your feedback!"))
}

func (p *Printer) Warning(msg string) {
	p.println(p.warn.Render("⚠️  Warning: " + msg))
}

// Error prints err with the guidance for its kind.
func (p *Printer) Error(err error) {
	headline, steps := apperr.Guidance(err)
	p.println(p.errText.Render("❌ Error: " + headline))
	p.println(p.faint.Render("   " + err.Error()))
	if len(steps) > 0 {
		p.println("")
		p.println("💡 How to fix this:")
		for _, s := range steps {
			p.println("   " + s)
		}
	}
}

// Report renders the statistics dashboard.
func (p *Printer) Report(r *analytics.Report) {
	p.println(p.title.Render("📊 Feedback Statistics"))
	if r.Empty() {
		p.println("")
		p.println("No feedback data available yet. Generate some jokes and rate them!")
		return
	}

	p.println(strings.Repeat("=", 40))
	p.println(fmt.Sprintf("📈 Total jokes rated: %d", r.TotalRated))
	p.println(fmt.Sprintf("⭐ Average rating: %.1f/5.0", r.AverageRating))
	if r.Skipped > 0 {
		p.println(p.faint.Render(fmt.Sprintf("⏭  Skipped ratings: %d of %d jokes", r.Skipped, r.TotalRecords)))
	}
	p.println("")

	p.println(p.label.Render("📊 Rating Distribution:"))
	p.println(strings.Repeat("-", 25))
	for i := len(r.Distribution) - 1; i >= 0; i-- {
		b := r.Distribution[i]
		stars := strings.Repeat("⭐", b.Stars)
		bar := p.good.Render(strings.Repeat("█", int(b.Percent/5)))
		p.println(fmt.Sprintf("%s (%d): %2d jokes %s %4.1f%%", stars, b.Stars, b.Count, bar, b.Percent))
	}
	p.println("")

	p.println(p.label.Render("📂 By Category:"))
	p.println(strings.Repeat("-", 20))
	for _, c := range r.Categories {
		p.println(fmt.Sprintf("  %s: %d jokes (%.1f%%), %.1f/5.0 avg", c.Category.Title(), c.Count, c.Percent, c.AverageRating))
	}

	p.println("")
	if r.MostPopular != nil {
		p.println(fmt.Sprintf("🏆 Most popular: %s (%d jokes)", r.MostPopular.Category.Title(), r.MostPopular.Count))
	}
	if r.LeastPopular != nil {
		p.println(fmt.Sprintf("📉 Least popular: %s (%d jokes)", r.LeastPopular.Category.Title(), r.LeastPopular.Count))
	}
	if r.HighestRated != nil {
		p.println(fmt.Sprintf("🌟 Highest rated: %s (%.1f/5.0)", r.HighestRated.Category.Title(), r.HighestRated.AverageRating))
	}
	if r.LowestRated != nil {
		p.println(fmt.Sprintf("💭 Lowest rated: %s (%.1f/5.0)", r.LowestRated.Category.Title(), r.LowestRated.AverageRating))
	}
}
