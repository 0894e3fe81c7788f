package recommendationController

import (
	"regexp"
	"strings"
)

var ordinalLine = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+([^\n:]+)`)

var emphasis = strings.NewReplacer("**", "", "__", "")

// ExtractCrops collects the text after each "N. " list marker up to the first
// colon, in the order the model wrote them. It is a heuristic over free text
// and may return an empty slice.
func ExtractCrops(text string) []string {
	matches := ordinalLine.FindAllStringSubmatch(text, -1)
	crops := make([]string, 0, len(matches))

	for _, match := range matches {
		name := emphasis.Replace(match[1])
		name = strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "*_"))
		if name == "" {
			continue
		}
		crops = append(crops, name)
	}

	return crops
}
