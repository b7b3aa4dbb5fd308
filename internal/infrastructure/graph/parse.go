package graph

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns free text into a stable lowercase identifier suitable for
// graph node keys
func Slugify(s string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(slug, "-")
}

// ParseMarkdownSections splits a markdown insight into titled blocks.
// A "### Heading" line opens a section; subsequent "- item" lines become its
// details. Detail lines seen before any heading are grouped under a section
// with an empty title.
func ParseMarkdownSections(text string) []entities.StructuredItem {
	items := []entities.StructuredItem{}
	if strings.TrimSpace(text) == "" {
		return items
	}

	var current *entities.StructuredItem
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "###") {
			title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			items = append(items, entities.StructuredItem{Title: title, Details: []string{}})
			current = &items[len(items)-1]
			continue
		}

		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			detail := strings.TrimSpace(trimmed[2:])
			if detail == "" {
				continue
			}
			if current == nil {
				items = append(items, entities.StructuredItem{Title: "", Details: []string{}})
				current = &items[len(items)-1]
			}
			current.Details = append(current.Details, detail)
		}
	}
	return items
}

// ParseTags splits a comma separated tag string into trimmed lowercase tags
func ParseTags(text string) []string {
	tags := []string{}
	for _, part := range strings.Split(text, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ParseKnowledgeGraph extracts a knowledge graph from raw model output.
// Code fences and any prose around the JSON object are tolerated. Unusable
// output yields the empty shape rather than an error, so a bad extraction
// never sinks the rest of the insight stage.
func ParseKnowledgeGraph(raw string) entities.KnowledgeGraph {
	cleaned := stripCodeFences(raw)

	// A payload that is valid JSON but not an object (an array wrapping the
	// graph, a bare string) is unusable as a whole; extracting an inner
	// object from it would fabricate a graph the model never committed to.
	if len(cleaned) > 0 && cleaned[0] != '{' {
		var top any
		if json.Unmarshal([]byte(cleaned), &top) == nil {
			return entities.EmptyKnowledgeGraph()
		}
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return entities.EmptyKnowledgeGraph()
	}

	var kg entities.KnowledgeGraph
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &kg); err != nil {
		return entities.EmptyKnowledgeGraph()
	}
	kg.Normalize()
	return kg
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
