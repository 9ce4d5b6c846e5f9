package main

import (
	"path/filepath"
	"strings"
)

// Category is the coarse document class inferred from the filename.
type Category string

const (
	CategoryISO       Category = "ISO"
	CategoryHR        Category = "HR"
	CategoryProcedure Category = "Procedure"
	CategoryOther     Category = "Other"
)

// categoryRules is an ordered priority list; the first rule with a matching
// keyword wins, so the same filename always classifies the same way.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryISO, []string{"iso", "norme", "standard"}},
	{CategoryHR, []string{"rh", "formation", "for-rh"}},
	{CategoryProcedure, []string{"pcd", "procédure", "procedure"}},
}

// Classify matches the base filename case-insensitively against the rules.
func Classify(path string) Category {
	name := strings.ToLower(filepath.Base(path))
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.category
			}
		}
	}

	return CategoryOther
}
