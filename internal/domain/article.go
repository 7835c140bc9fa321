package domain

import "time"

// Article is a single normalized news item produced by the feed pipeline.
type Article struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Link           string    `json:"link"`
	PublishedAt    time.Time `json:"publishedAt"`
	Source         string    `json:"source"`
	GUID           string    `json:"guid"`
	QualityScore   int       `json:"qualityScore"`
	Priority       Priority  `json:"priority"`
	SourceWeight   float64   `json:"sourceWeight"`
	RelevantStocks []string  `json:"relevantStocks"`
}

// Text returns title and description joined for keyword matching.
func (a Article) Text() string {
	return a.Title + " " + a.Description
}

// Priority is an informational label copied from source configuration.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SourceConfig describes one RSS source and its balancing policy.
type SourceConfig struct {
	Name         string
	FeedURL      string
	Weight       float64
	MaxArticles  int
	QualityScore int
	Priority     Priority
}

// SourceStats reports how many articles a source was asked for, offered and gave.
type SourceStats struct {
	Source    string  `json:"source"`
	Target    int     `json:"target"`
	Available int     `json:"available"`
	Selected  int     `json:"selected"`
	Weight    float64 `json:"weight"`
}

// SourceFailure records why a source contributed nothing.
type SourceFailure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}
