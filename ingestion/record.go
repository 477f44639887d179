package ingestion

import (
	"strings"

	"github.com/poiesic/taskrag/core"
)

// TaskRecord is the file representation of one task.
type TaskRecord struct {
	Source          string   `json:"source" yaml:"source"`
	Topic           string   `json:"topic" yaml:"topic"`
	Subtopic        string   `json:"subtopic" yaml:"subtopic"`
	Difficulty      int      `json:"difficulty" yaml:"difficulty"`
	Skills          []string `json:"skills" yaml:"skills"`
	StatementText   string   `json:"statement_text" yaml:"statement_text"`
	StatementTeX    string   `json:"statement_tex" yaml:"statement_tex"`
	Answer          string   `json:"answer" yaml:"answer"`
	SolutionText    string   `json:"solution_text" yaml:"solution_text"`
	SolutionTeX     string   `json:"solution_tex" yaml:"solution_tex"`
	Tags            []string `json:"tags" yaml:"tags"`
	TimeEstimateSec int      `json:"time_estimate_sec" yaml:"time_estimate_sec"`
	Format          string   `json:"format" yaml:"format"`
}

// Task converts the record into an unsaved task.
func (r TaskRecord) Task() *core.Task {
	format := strings.TrimSpace(r.Format)
	if format == "" {
		format = core.DefaultTaskFormat
	}
	return &core.Task{
		Source:          r.Source,
		Topic:           strings.TrimSpace(r.Topic),
		Subtopic:        strings.TrimSpace(r.Subtopic),
		Difficulty:      r.Difficulty,
		Skills:          r.Skills,
		StatementText:   r.StatementText,
		StatementTeX:    r.StatementTeX,
		Answer:          r.Answer,
		SolutionText:    r.SolutionText,
		SolutionTeX:     r.SolutionTeX,
		Tags:            r.Tags,
		TimeEstimateSec: r.TimeEstimateSec,
		Format:          format,
	}
}
