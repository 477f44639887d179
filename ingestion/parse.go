package ingestion

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"
)

// maxLineSize bounds a single JSONL line.
const maxLineSize = 4 << 20

// ParseResult holds the records read from a file and the entries that
// could not be read.
type ParseResult struct {
	Records []TaskRecord
	Errors  []string
}

// IsSupportedFile reports whether path has a task file extension.
func IsSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".csv", ".yaml", ".yml":
		return true
	}
	return false
}

// ParseFile reads a task file, choosing the format from its extension.
// Malformed entries are reported in the result; the error return is
// reserved for files that cannot be read at all.
func ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return ParseJSONL(f)
	case ".csv":
		return ParseCSV(f)
	case ".yaml", ".yml":
		return ParseYAML(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseJSONL reads one JSON task per line. Lines that fail to decode are
// passed through jsonrepair once before being reported.
func ParseJSONL(r io.Reader) (*ParseResult, error) {
	result := &ParseResult{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, err := decodeJSONRecord(line)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		result.Records = append(result.Records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func decodeJSONRecord(line string) (TaskRecord, error) {
	var record TaskRecord
	err := json.Unmarshal([]byte(line), &record)
	if err == nil {
		return record, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(line)
	if repairErr != nil {
		return TaskRecord{}, err
	}
	record = TaskRecord{}
	if err := json.Unmarshal([]byte(repaired), &record); err != nil {
		return TaskRecord{}, err
	}
	return record, nil
}

// ParseCSV reads tasks from a CSV file with a header row. The skills and
// tags columns hold JSON arrays, or comma-separated values.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &ParseResult{}, nil
		}
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}
	for _, required := range []string{"topic", "statement_text", "difficulty"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	result := &ParseResult{}
	rowNo := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNo++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNo, err))
			continue
		}

		cell := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		record, err := csvRecord(cell)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNo, err))
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

func csvRecord(cell func(string) string) (TaskRecord, error) {
	difficulty, err := parseInt(cell("difficulty"))
	if err != nil {
		return TaskRecord{}, fmt.Errorf("difficulty: %w", err)
	}
	timeEstimate, err := parseInt(cell("time_estimate_sec"))
	if err != nil {
		return TaskRecord{}, fmt.Errorf("time_estimate_sec: %w", err)
	}
	skills, err := parseList(cell("skills"))
	if err != nil {
		return TaskRecord{}, fmt.Errorf("skills: %w", err)
	}
	tags, err := parseList(cell("tags"))
	if err != nil {
		return TaskRecord{}, fmt.Errorf("tags: %w", err)
	}

	return TaskRecord{
		Source:          cell("source"),
		Topic:           cell("topic"),
		Subtopic:        cell("subtopic"),
		Difficulty:      difficulty,
		Skills:          skills,
		StatementText:   cell("statement_text"),
		StatementTeX:    cell("statement_tex"),
		Answer:          cell("answer"),
		SolutionText:    cell("solution_text"),
		SolutionTeX:     cell("solution_tex"),
		Tags:            tags,
		TimeEstimateSec: timeEstimate,
		Format:          cell("format"),
	}, nil
}

// parseInt accepts integers written as floats, as spreadsheets export them.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func parseList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return list, nil
		}
		repaired, err := jsonrepair.JSONRepair(s)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(repaired), &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var list []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list, nil
}

// ParseYAML reads a YAML sequence of tasks.
func ParseYAML(r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var records []TaskRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &ParseResult{Records: records}, nil
}
