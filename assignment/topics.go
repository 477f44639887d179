package assignment

import (
	"strconv"
	"strings"
)

const (
	emDash = "—"
	hyphen = "-"
)

// TopicRequest asks for Count tasks on Topic.
type TopicRequest struct {
	Topic string
	Count int
}

// ParseTopics parses a comma-separated request such as
// "Algebra — 3, Geometry - 2, Probability". The last em dash (or, when the
// part has none, the last hyphen) separates topic from count. A part whose
// count is not an integer is kept whole with a count of 1. Blank parts are
// skipped.
func ParseTopics(text string) []TopicRequest {
	var requests []TopicRequest
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		requests = append(requests, parseTopic(part))
	}
	return requests
}

func parseTopic(part string) TopicRequest {
	separator := hyphen
	if strings.Contains(part, emDash) {
		separator = emDash
	}

	i := strings.LastIndex(part, separator)
	if i < 0 {
		return TopicRequest{Topic: part, Count: 1}
	}

	count, err := strconv.Atoi(strings.TrimSpace(part[i+len(separator):]))
	topic := strings.TrimSpace(part[:i])
	if err != nil || topic == "" {
		return TopicRequest{Topic: part, Count: 1}
	}
	return TopicRequest{Topic: topic, Count: count}
}
