// Package annotation extracts typed sustainability intent records from
// the documentation blocks attached to function-like declarations.
package annotation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vihrea/vihrea/types"
)

// Tag grammar. These literal formats are part of the public contract:
// any block naming a recognized @sdg goal yields one annotation, every
// other tag is optional and malformed values degrade to absent fields.
var (
	sdgPattern          = regexp.MustCompile(`@sdg\s+Goal(\d+)\b`)
	carbonBudgetPattern = regexp.MustCompile(`@carbonBudget\s+(\d+(?:\.\d+)?)\s*kWh`)
	impactPattern       = regexp.MustCompile(`@impact\s+(\w+)\s+(\w+)`)
	descriptionPattern  = regexp.MustCompile(`@description\s+(.+)`)
	tagsPattern         = regexp.MustCompile(`@tags\s+(.+)`)
)

// Extractor turns documentation blocks into annotations.
type Extractor struct{}

// NewExtractor creates an annotation extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes the ordered documentation blocks of one declaration.
// Each block is handled independently; a block without a recognized
// @sdg goal yields nothing. Order is preserved.
func (e *Extractor) Extract(blocks []string) []types.Annotation {
	var annotations []types.Annotation
	for _, block := range blocks {
		if ann, ok := e.extractBlock(block); ok {
			annotations = append(annotations, ann)
		}
	}
	return annotations
}

// extractBlock parses a single documentation block.
func (e *Extractor) extractBlock(block string) (types.Annotation, bool) {
	goal, ok := parseGoal(block)
	if !ok {
		return types.Annotation{}, false
	}

	ann := types.Annotation{Goal: goal}
	ann.CarbonBudget = parseCarbonBudget(block)
	ann.Impact = parseImpact(block)
	ann.Description = parseDescription(block)
	ann.Tags = parseTags(block)
	return ann, true
}

// parseGoal matches @sdg Goal<N> with N in 1-17. Unrecognized numbers
// are silently ignored.
func parseGoal(block string) (types.Goal, bool) {
	m := sdgPattern.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	return types.GoalFromNumber(n)
}

// parseCarbonBudget matches @carbonBudget <number> kWh.
func parseCarbonBudget(block string) *float64 {
	m := carbonBudgetPattern.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	budget, err := strconv.ParseFloat(m[1], 64)
	if err != nil || budget < 0 {
		return nil
	}
	return &budget
}

// parseImpact matches @impact <category> <level>. Either word failing
// its enumeration drops the whole pair.
func parseImpact(block string) *types.Impact {
	m := impactPattern.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	category := strings.ToLower(m[1])
	level := strings.ToLower(m[2])
	if !types.ValidImpactCategory(category) || !types.ValidImpactLevel(level) {
		return nil
	}
	return &types.Impact{
		Category: types.ImpactCategory(category),
		Level:    types.ImpactLevel(level),
	}
}

// parseDescription matches @description <free text> up to end of line.
func parseDescription(block string) string {
	m := descriptionPattern.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// parseTags matches @tags a, b, c and trims each entry.
func parseTags(block string) []string {
	m := tagsPattern.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	var tags []string
	for _, raw := range strings.Split(m[1], ",") {
		if tag := strings.TrimSpace(raw); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
