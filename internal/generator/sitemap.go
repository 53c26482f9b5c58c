package generator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// Sitemap lists the home page, every category index and every published
// entry, sorted by location.
func (g *Generator) Sitemap(ctx context.Context) (string, error) {
	items, err := g.collect(ctx)
	if err != nil {
		return "", err
	}
	base := baseURLWithFallback(g.cfg.Site.BaseURL)

	newest := map[string]time.Time{}
	entries := make([]sitemapEntry, 0, len(items)+len(g.cfg.Categories)+1)
	for _, item := range items {
		entries = append(entries, sitemapEntry{Location: item.Link, LastMod: item.PublishedAt})
		index := string(item.Category)
		if item.PublishedAt.After(newest[index]) {
			newest[index] = item.PublishedAt
		}
	}
	for _, category := range g.cfg.Categories {
		entries = append(entries, sitemapEntry{
			Location: absoluteURL(base, "/"+string(category)),
			LastMod:  newest[string(category)],
		})
	}
	if len(items) > 0 {
		entries = append(entries, sitemapEntry{Location: base + "/", LastMod: items[0].PublishedAt})
	} else {
		entries = append(entries, sitemapEntry{Location: base + "/"})
	}

	slices.SortFunc(entries, func(a, b sitemapEntry) int {
		return strings.Compare(a.Location, b.Location)
	})
	entries = slices.CompactFunc(entries, func(a, b sitemapEntry) bool {
		return a.Location == b.Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String(), nil
}

// Robots renders a permissive robots.txt pointing at the sitemap.
func (g *Generator) Robots() string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", baseURLWithFallback(g.cfg.Site.BaseURL)))
	return builder.String()
}
