package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/reindex"
	"github.com/poiesic/taskrag/search"
	"github.com/urfave/cli/v2"
)

func importCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	importer, err := db.NewImporter()
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}
	defer importer.Release()

	var session *core.ImportSession
	if info.IsDir() {
		session, err = importer.ImportDirectory(c.Context, path)
	} else {
		session, err = importer.ImportFile(c.Context, path)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Session %s: %s, imported %d of %d tasks\n",
		session.Key, session.Status, session.ImportedTasks, session.TotalTasks)
	for _, msg := range session.Errors {
		fmt.Printf("  %s\n", msg)
	}
	if session.Status == core.ImportStatusFailed {
		return errors.New("import failed")
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewEngine()
	if err != nil {
		return err
	}

	q := search.Query{
		Text:  strings.Join(c.Args().Slice(), " "),
		Topic: c.String("topic"),
		Limit: c.Int("limit"),
	}
	if c.IsSet("min-difficulty") || c.IsSet("max-difficulty") {
		q.Difficulty = &index.Range{Min: core.MinDifficulty, Max: core.MaxDifficulty}
		if c.IsSet("min-difficulty") {
			q.Difficulty.Min = c.Int("min-difficulty")
		}
		if c.IsSet("max-difficulty") {
			q.Difficulty.Max = c.Int("max-difficulty")
		}
	}

	results := engine.Search(c.Context, q)
	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		task, err := db.TaskRepository().GetTask(c.Context, hit.TaskID)
		if err != nil {
			fmt.Printf("%d: task %d (missing) [%0.3f]\n", i+1, hit.TaskID, hit.CombinedScore)
			continue
		}
		fmt.Printf("%d: '%s' (%d, %s, d%d)[%0.3f = v%0.3f + l%0.3f]\n",
			i+1, task.StatementText, task.ID, task.Topic, task.Difficulty,
			hit.CombinedScore, hit.VectorScore, hit.BM25Score)
	}
	return nil
}

func assignCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	generator, err := db.NewGenerator()
	if err != nil {
		return err
	}

	student := core.StudentContext{
		Name:        c.String("student"),
		TargetScore: c.Int("target-score"),
	}
	result, err := generator.Generate(c.Context, student, c.String("topics"))
	if err != nil {
		return err
	}

	fmt.Printf("Assignment with %d tasks\n", len(result.Items))
	for _, item := range result.Items {
		fmt.Printf("%d. [%s, d%d] %s\n", item.Order, item.Task.Topic, item.Task.Difficulty, item.Task.StatementText)
		fmt.Printf("   %s (score %0.3f)\n", item.Reason, item.CombinedScore)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reindexer, err := db.NewReindexer(reindexConfig, os.Stderr)
	if err != nil {
		return err
	}
	if _, err := reindexer.Run(c.Context); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func infoCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	tasks, err := db.TaskRepository().CountTasks(c.Context)
	if err != nil {
		return err
	}
	skeletons, err := db.SkeletonRepository().CountSkeletons(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("Tasks: %d\nSkeletons: %d\n", tasks, skeletons)

	engine, err := db.NewEngine()
	if err != nil {
		return err
	}
	info, err := engine.CollectionInfo(c.Context)
	if err != nil {
		fmt.Printf("Search: %v\n", err)
		return nil
	}
	fmt.Printf("Vector records: %d (dimension %d)\nLexical documents: %d\n",
		info.Vector.RecordCount, info.Vector.Dimension, info.Lexical.DocumentCount)
	return nil
}

func sessionCommand(c *cli.Context) error {
	key := c.Args().First()
	if key == "" {
		return errors.New("session key is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := db.ImportSessionRepository().FindImportSessionByKey(c.Context, key)
	if err != nil {
		return err
	}

	fmt.Printf("Session %s (%s)\n", session.Key, session.Filename)
	fmt.Printf("Status: %s\nImported: %d of %d\n", session.Status, session.ImportedTasks, session.TotalTasks)
	fmt.Printf("Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	if !session.CompletedAt.IsZero() {
		fmt.Printf("Completed: %s\n", session.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	for _, msg := range session.Errors {
		fmt.Printf("  %s\n", msg)
	}
	return nil
}
