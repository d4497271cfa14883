package notion

import "strings"

// Untitled is the display title used when an item has no usable title.
const Untitled = "(Untitled)"

// PlainText joins the plain text of a rich text array.
func PlainText(rt []RichText) string {
	var b strings.Builder
	for _, t := range rt {
		b.WriteString(t.PlainText)
	}
	return b.String()
}

// PageTitle extracts a page's display title from its title-type property.
func PageTitle(p *Page) string {
	if p == nil {
		return Untitled
	}
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			if title := strings.TrimSpace(PlainText(prop.Title)); title != "" {
				return title
			}
		}
	}
	return Untitled
}

// ResultTitle extracts the display title of a search result: pages go
// through their title property, databases and data sources carry a top-level
// title array.
func ResultTitle(item SearchResult) string {
	switch item.Object {
	case "page":
		for _, prop := range item.Properties {
			if prop.Type == "title" {
				if title := strings.TrimSpace(PlainText(prop.Title)); title != "" {
					return title
				}
			}
		}
	case "database", "data_source":
		if title := PlainText(item.Title); title != "" {
			return title
		}
	}
	return Untitled
}
