// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/taskrag"
	"github.com/poiesic/taskrag/search"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	ctx := context.Background()

	db, err := taskrag.NewDatabase(ctx, "./taskrag_db")
	if err != nil {
		panic(err)
	}
	defer db.Close()
	engine, err := db.NewEngine()
	if err != nil {
		panic(err)
	}

	query := "quadratic equation roots"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}
	results := engine.Search(ctx, search.Query{Text: query, Limit: 5})

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		task, err := db.TaskRepository().GetTask(ctx, hit.TaskID)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%d: '%s' (%d)[%0.3f]\n", i, task.StatementText, task.ID, hit.CombinedScore)
	}
}
