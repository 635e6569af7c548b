package marketdata

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const newsFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"

// rss mirrors the Yahoo Finance headline feed layout.
type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	Source      rssSource `xml:"source"`
	GUID        string    `xml:"guid"`
}

type rssSource struct {
	URL  string `xml:"url,attr"`
	Text string `xml:",chardata"`
}

// NewsClient fetches recent headlines for a symbol.
type NewsClient struct {
	client *resty.Client
}

// NewNewsClient creates a news client.
func NewNewsClient() *NewsClient {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", "volsuite/1.0")
	return &NewsClient{client: client}
}

// RecentNews fetches up to maxResults recent articles for a symbol,
// newest first as the feed lists them.
func (nc *NewsClient) RecentNews(symbol string, maxResults int) ([]NewsArticle, error) {
	symbol = NormalizeSymbol(symbol)

	resp, err := nc.client.R().
		SetQueryParams(map[string]string{
			"s":      symbol,
			"region": "US",
			"lang":   "en-US",
		}).
		Get(newsFeedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch news for %s: status %d", symbol, resp.StatusCode())
	}

	var feed rss
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("parse news feed for %s: %w", symbol, err)
	}

	articles := make([]NewsArticle, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if maxResults > 0 && len(articles) >= maxResults {
			break
		}
		publisher := item.Source.Text
		if publisher == "" {
			publisher = "Yahoo Finance"
		}
		articles = append(articles, NewsArticle{
			Title:       strings.TrimSpace(stripHTML(item.Title)),
			Publisher:   publisher,
			Summary:     strings.TrimSpace(stripHTML(item.Description)),
			URL:         item.Link,
			PublishedAt: parsePubDate(item.PubDate),
		})
	}
	return articles, nil
}

// stripHTML flattens embedded markup in feed fields to plain text.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

func parsePubDate(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
