package output

import (
	"encoding/xml"
	"fmt"
	"time"

	"ainews/internal/domain"
	"ainews/internal/scoring"
)

const DefaultFeedItems = 10

// FeedOptions описывает канал выходной RSS-ленты.
type FeedOptions struct {
	Title string
	Link  string
	Items int
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description,omitempty"`
	PubDate     string  `xml:"pubDate,omitempty"`
	Category    string  `xml:"category,omitempty"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// BuildFeed формирует RSS 2.0 из первых opts.Items статей результата.
// Дата публикации приводится к RFC 1123, нераспознанная дата опускается.
func BuildFeed(result *domain.Result, opts FeedOptions) ([]byte, error) {
	limit := opts.Items
	if limit <= 0 {
		limit = DefaultFeedItems
	}
	articles := result.Articles
	if len(articles) > limit {
		articles = articles[:limit]
	}

	channel := rssChannel{
		Title:         opts.Title,
		Link:          opts.Link,
		Description:   fmt.Sprintf("Top %d AI news ranked by importance", limit),
		LastBuildDate: result.FinishedAt.UTC().Format(time.RFC1123Z),
		Items:         make([]rssItem, 0, len(articles)),
	}
	for _, a := range articles {
		item := rssItem{
			Title:       a.Title,
			Link:        a.URL,
			Description: a.Description,
			Category:    a.Source,
			GUID:        rssGUID{IsPermaLink: true, Value: a.URL},
		}
		if t, ok := scoring.ParsePublished(a.PublishedAt); ok {
			item.PubDate = t.UTC().Format(time.RFC1123Z)
		}
		channel.Items = append(channel.Items, item)
	}

	body, err := xml.MarshalIndent(rssDocument{Version: "2.0", Channel: channel}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode rss feed: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
