package analytics

import (
	"encoding/json"
	"math"
	"sort"

	"joke-cli/internal/joke"
	"joke-cli/internal/storage"
)

// RatingBucket is the share of rated jokes that got a given number of stars.
type RatingBucket struct {
	Stars   int     `json:"stars"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// CategoryStats summarizes the rated jokes of one category.
type CategoryStats struct {
	Category      joke.Category `json:"category"`
	Count         int           `json:"count"`
	Percent       float64       `json:"percent"`
	AverageRating float64       `json:"average_rating"`
}

// Ranking names a category singled out on the dashboard.
type Ranking struct {
	Category      joke.Category `json:"category"`
	Count         int           `json:"count"`
	AverageRating float64       `json:"average_rating"`
}

// Report is the statistics dashboard. It is recomputed from the full record
// list every time and never stored.
type Report struct {
	TotalRecords  int     `json:"total_records"`
	Skipped       int     `json:"skipped"`
	TotalRated    int     `json:"total_rated"`
	AverageRating float64 `json:"average_rating"`

	// Distribution is ordered 1..5 stars and empty when nothing was rated.
	Distribution []RatingBucket `json:"distribution"`
	// Categories is ordered by rated count, busiest first.
	Categories []CategoryStats `json:"categories"`

	MostPopular  *Ranking `json:"most_popular,omitempty"`
	LeastPopular *Ranking `json:"least_popular,omitempty"`
	HighestRated *Ranking `json:"highest_rated,omitempty"`
	LowestRated  *Ranking `json:"lowest_rated,omitempty"`
}

// Empty reports whether there is anything to show.
func (r *Report) Empty() bool {
	return r.TotalRated == 0
}

type categoryAcc struct {
	category  joke.Category
	firstSeen int
	count     int
	sum       int
}

// Analyze aggregates feedback records. Records without a rating count toward
// TotalRecords and Skipped only. Ties between categories go to the canonical
// category order; categories outside it follow in the order first seen.
func Analyze(records []storage.Record) *Report {
	r := &Report{
		TotalRecords: len(records),
		Distribution: []RatingBucket{},
		Categories:   []CategoryStats{},
	}

	var stars [6]int
	sum := 0
	byCategory := make(map[joke.Category]*categoryAcc)

	for i, rec := range records {
		if !rec.Rated() {
			r.Skipped++
			continue
		}
		rating := *rec.Rating
		r.TotalRated++
		sum += rating
		stars[rating]++

		acc, ok := byCategory[rec.Category]
		if !ok {
			acc = &categoryAcc{category: rec.Category, firstSeen: i}
			byCategory[rec.Category] = acc
		}
		acc.count++
		acc.sum += rating
	}

	if r.TotalRated == 0 {
		return r
	}

	r.AverageRating = round1(float64(sum) / float64(r.TotalRated))
	for s := 1; s <= 5; s++ {
		r.Distribution = append(r.Distribution, RatingBucket{
			Stars:   s,
			Count:   stars[s],
			Percent: percent(stars[s], r.TotalRated),
		})
	}

	canonical := make([]*categoryAcc, 0, len(byCategory))
	for _, acc := range byCategory {
		canonical = append(canonical, acc)
	}
	sort.Slice(canonical, func(i, j int) bool { return before(canonical[i], canonical[j]) })

	byCount := append([]*categoryAcc(nil), canonical...)
	sort.SliceStable(byCount, func(i, j int) bool { return byCount[i].count > byCount[j].count })
	byAverage := append([]*categoryAcc(nil), canonical...)
	sort.SliceStable(byAverage, func(i, j int) bool { return byAverage[i].average() > byAverage[j].average() })

	for _, acc := range byCount {
		r.Categories = append(r.Categories, CategoryStats{
			Category:      acc.category,
			Count:         acc.count,
			Percent:       percent(acc.count, r.TotalRated),
			AverageRating: acc.average(),
		})
	}

	r.MostPopular = byCount[0].ranking()
	r.HighestRated = byAverage[0].ranking()
	if len(canonical) > 1 {
		r.LeastPopular = byCount[len(byCount)-1].ranking()
		r.LowestRated = byAverage[len(byAverage)-1].ranking()
	}
	return r
}

// before is the canonical order; unknown categories follow in first-seen order.
func before(a, b *categoryAcc) bool {
	ra, rb := a.category.Rank(), b.category.Rank()
	switch {
	case ra >= 0 && rb >= 0:
		return ra < rb
	case ra >= 0:
		return true
	case rb >= 0:
		return false
	}
	return a.firstSeen < b.firstSeen
}

func (a *categoryAcc) average() float64 {
	return float64(a.sum) / float64(a.count)
}

func (a *categoryAcc) ranking() *Ranking {
	return &Ranking{Category: a.category, Count: a.count, AverageRating: a.average()}
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ToJSON serializes the report for --json output.
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
