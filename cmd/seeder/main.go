package main

import (
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/taskrag"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/ingestion"
)

// Several templates share a skeleton so the catalogue exercises
// duplicate detection.
var templates = []struct {
	topic      string
	subtopic   string
	difficulty int
	statement  string
	tags       []string
}{
	{"Algebra", "Linear equations", 2, "Solve %d x + %d = %d", []string{"equation"}},
	{"Algebra", "Linear equations", 3, "Solve %d(x - %d) = %d", []string{"equation", "brackets"}},
	{"Algebra", "Quadratic equations", 4, "Find the roots of x^2 - %d x + %d = 0", []string{"equation", "quadratic"}},
	{"Algebra", "Inequalities", 3, "Solve the inequality %d x - %d > %d", []string{"inequality"}},
	{"Geometry", "Area", 2, "Find the area of a rectangle with sides %d and %d", []string{"area"}},
	{"Geometry", "Circles", 3, "Find the circumference of a circle with radius %d", []string{"circle"}},
	{"Geometry", "Triangles", 4, "A right triangle has legs %d and %d. Find the hypotenuse", []string{"pythagoras"}},
	{"Probability", "Classical", 3, "A die is rolled %d times. Find the probability that a six appears exactly once", []string{"dice"}},
	{"Probability", "Classical", 4, "Alice draws %d cards from a deck of %d. Find the probability that all are hearts", []string{"cards"}},
	{"Statistics", "Mean", 1, "Find the mean of %d, %d and %d", []string{"mean"}},
	{"Trigonometry", "Identities", 5, "Prove that sin^2 x + cos^2 x = 1 for every x", []string{"identity"}},
	{"Calculus", "Derivatives", 4, "Find the derivative of f(x) = %d x^3 - %d x", []string{"derivative"}},
}

var (
	seedFileName = flag.String("src", "", "task file or directory to import instead of the built-in samples")
	dbPath       = flag.String("db", "./taskrag_db", "database directory")
	variants     = flag.Int("variants", 3, "number of numeric variants per sample template")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// sampleTasks yields numeric variants of every template. Variants of one
// template share a skeleton.
func sampleTasks(n int) iter.Seq[*core.Task] {
	return func(yield func(*core.Task) bool) {
		for v := 1; v <= n; v++ {
			for _, tpl := range templates {
				args := []any{v + 1, v + 2, v * 3, v + 4}
				task := &core.Task{
					Source:        "seeder",
					Topic:         tpl.topic,
					Subtopic:      tpl.subtopic,
					Difficulty:    tpl.difficulty,
					StatementText: fmt.Sprintf(tpl.statement, args[:countVerbs(tpl.statement)]...),
					Tags:          tpl.tags,
				}
				if !yield(task) {
					return
				}
			}
		}
	}
}

func countVerbs(format string) int {
	n := 0
	for i := 0; i+1 < len(format); i++ {
		if format[i] == '%' && format[i+1] == 'd' {
			n++
		}
	}
	return n
}

func importBatched(ctx context.Context, importer *ingestion.Importer, source iter.Seq[*core.Task], batchSize int) error {
	batch := make([]*core.Task, 0, batchSize)
	flush := func() error {
		session, err := importer.ImportTasks(ctx, "seeder", batch)
		if err != nil {
			return err
		}
		for _, msg := range session.Errors {
			slog.Warn("seed task rejected", "err", msg)
		}
		batch = batch[:0]
		return nil
	}

	for task := range source {
		batch = append(batch, task)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	// Process any remaining tasks
	if len(batch) > 0 {
		return flush()
	}
	return nil
}

func main() {
	ctx := context.Background()

	db, err := taskrag.NewDatabase(ctx, *dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	importer, err := db.NewImporter()
	if err != nil {
		panic(err)
	}
	defer importer.Release()

	if *seedFileName != "" {
		info, err := os.Stat(*seedFileName)
		if err != nil {
			panic(err)
		}
		var session *core.ImportSession
		if info.IsDir() {
			session, err = importer.ImportDirectory(ctx, *seedFileName)
		} else {
			session, err = importer.ImportFile(ctx, *seedFileName)
		}
		if err != nil {
			panic(err)
		}
		slog.Info("import finished", "status", session.Status.String(), "imported", session.ImportedTasks, "total", session.TotalTasks)
		return
	}

	if err := importBatched(ctx, importer, sampleTasks(*variants), 5); err != nil {
		panic(err)
	}

	count, err := db.TaskRepository().CountTasks(ctx)
	if err != nil {
		panic(err)
	}
	skeletons, err := db.SkeletonRepository().CountSkeletons(ctx)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded catalogue", "tasks", count, "skeletons", skeletons)
}
