package entity

import (
	"fmt"
	"strings"
)

// BuildContextWindow assembles the bounded textual window submitted to the
// narrative engine: one "[<start>s] <combined_context>" line per scene, in
// checkpoint order. Scenes with an empty CombinedContext are skipped and do
// not consume a slot; only the first maxScenes qualifying scenes are kept.
// Later scenes are silently excluded, which biases the generated narration
// toward the opening of the source video.
func BuildContextWindow(scenes []EnrichedSceneRecord, maxScenes int) string {
	if maxScenes <= 0 {
		return ""
	}
	var lines []string
	for _, s := range scenes {
		if len(lines) >= maxScenes {
			break
		}
		if s.CombinedContext == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%.1fs] %s", s.StartTime, s.CombinedContext))
	}
	return strings.Join(lines, "\n")
}
