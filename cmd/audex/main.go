// Copyright 2026 Poiesic Systems
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
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/audex"
	"github.com/poiesic/audex/ai"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/ingestion"
	"github.com/poiesic/audex/reembed"
)

func main() {
	app := &cli.App{
		Name:  "audex",
		Usage: "Audio asset catalog with hybrid lexical and semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the catalog directory",
				Value:   "./audex_db",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a single audio asset to the catalog",
				Action:    addCommand,
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Usage:    "Audio type (music, ambient, mood, action, transition)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Searchable description (derived from the filename when omitted)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach (repeatable)",
					},
					&cli.IntFlag{
						Name:  "duration",
						Usage: "Duration in seconds (probed from the file when omitted)",
					},
				},
			},
			{
				Name:      "get",
				Usage:     "Show a record by ID",
				Action:    getCommand,
				ArgsUsage: "<id>",
			},
			{
				Name:      "update",
				Usage:     "Apply a partial update to a record",
				Action:    updateCommand,
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "New file path",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "New description (triggers re-embedding)",
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "New audio type",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Replacement tag set (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "clear-tags",
						Usage: "Remove all tags",
					},
					&cli.IntFlag{
						Name:  "duration",
						Usage: "New duration in seconds",
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a record from the catalog",
				Action:    deleteCommand,
				ArgsUsage: "<id>",
			},
			{
				Name:   "list",
				Usage:  "List records in ID order",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum records to list (0 = all)",
						Value: 0,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show catalog statistics and the record schema",
				Action: statsCommand,
			},
			{
				Name:      "search",
				Usage:     "Hybrid search over the catalog",
				Action:    searchCommand,
				ArgsUsage: "<query>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Restrict to one audio type",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Require a tag (repeatable, all must match)",
					},
					&cli.IntFlag{
						Name:  "min-duration",
						Usage: "Minimum duration in seconds (inclusive)",
					},
					&cli.IntFlag{
						Name:  "max-duration",
						Usage: "Maximum duration in seconds (inclusive)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum results",
						Value:   core.DefaultSearchLimit,
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Bulk import assets from a manifest file",
				Action:    importCommand,
				ArgsUsage: "<manifest>",
				Description: "The manifest is a text file with one item per line:\n" +
					"   <type> <path> [tag,tag,...]\n" +
					"Durations are probed from the files; descriptions are derived\n" +
					"from the filenames. Lines starting with # are skipped.",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size per stage",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed every record with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openCatalog opens the catalog using the app-level flags.
func openCatalog(c *cli.Context) (*audex.Catalog, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	catalog, err := audex.Open(c.String("db"), audex.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return catalog, nil
}

func addCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one path argument")
	}

	audioType, err := core.ParseAudioType(c.String("type"))
	if err != nil {
		return err
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	record, err := catalog.Add(context.Background(), core.RecordCreate{
		Path:        c.Args().First(),
		Description: c.String("description"),
		Type:        audioType,
		Tags:        c.StringSlice("tag"),
		Duration:    c.Int("duration"),
	})
	if err != nil {
		return err
	}

	printRecord(record)
	return nil
}

func getCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	record, err := catalog.Get(context.Background(), id)
	if err != nil {
		return err
	}

	printRecord(record)
	return nil
}

func updateCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	patch := &core.RecordPatch{}
	if c.IsSet("path") {
		path := c.String("path")
		patch.Path = &path
	}
	if c.IsSet("description") {
		description := c.String("description")
		patch.Description = &description
	}
	if c.IsSet("type") {
		audioType, err := core.ParseAudioType(c.String("type"))
		if err != nil {
			return err
		}
		patch.Type = &audioType
	}
	if c.Bool("clear-tags") {
		patch.Tags = []string{}
	} else if c.IsSet("tag") {
		patch.Tags = c.StringSlice("tag")
	}
	if c.IsSet("duration") {
		duration := c.Int("duration")
		patch.Duration = &duration
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	record, err := catalog.Update(context.Background(), id, patch)
	if err != nil {
		return err
	}

	printRecord(record)
	return nil
}

func deleteCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.Delete(context.Background(), id); err != nil {
		return err
	}

	fmt.Printf("deleted record %d\n", id)
	return nil
}

func listCommand(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	records, err := catalog.List(context.Background(), c.Int("limit"))
	if err != nil {
		return err
	}

	for _, record := range records {
		fmt.Printf("%d\t%s\t%ds\t%s\t[%s]\n",
			record.Id, record.Type, record.Duration, record.Path,
			strings.Join(record.Tags, ", "))
	}
	fmt.Printf("%d records\n", len(records))
	return nil
}

func statsCommand(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	stats, err := catalog.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Total records: %d\n", stats.TotalCount)

	types := make([]string, 0, len(stats.TypeCounts))
	for name := range stats.TypeCounts {
		types = append(types, name)
	}
	sort.Strings(types)
	for _, name := range types {
		fmt.Printf("  %-12s %d\n", name, stats.TypeCounts[name])
	}

	fmt.Println("Schema:")
	fields := make([]string, 0, len(stats.Schema))
	for name := range stats.Schema {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		field := stats.Schema[name]
		fmt.Printf("  %-12s %-10s %s\n", name, field.Type, field.Description)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected a query")
	}

	request := &core.SearchRequest{
		Query:       strings.Join(c.Args().Slice(), " "),
		Tags:        c.StringSlice("tag"),
		MinDuration: c.Int("min-duration"),
		MaxDuration: c.Int("max-duration"),
		Limit:       c.Int("limit"),
	}
	if c.IsSet("type") {
		audioType, err := core.ParseAudioType(c.String("type"))
		if err != nil {
			return err
		}
		request.Type = &audioType
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	results, err := catalog.Search(context.Background(), request)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%d)[%0.3f] %s\n",
			i, hit.Record.Description, hit.Record.Id, hit.Score, hit.Record.Path)
	}
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one manifest argument")
	}

	items, err := readManifest(c.Args().First())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "manifest is empty, nothing to do")
		return nil
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	var opts []ingestion.Option
	if c.IsSet("workers") {
		opts = append(opts, ingestion.WithPoolSize(c.Int("workers")))
	}
	pipeline, err := catalog.NewImportPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	report, err := pipeline.Import(context.Background(), items)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d of %d items\n", len(report.Added), len(items))
	for _, failure := range report.Failures {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", failure.Path, failure.Err)
	}
	return nil
}

// readManifest parses one import item per line: "<type> <path> [tag,tag,...]".
func readManifest(path string) ([]core.RecordCreate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var items []core.RecordCreate
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("manifest line %d: expected '<type> <path> [tags]'", lineNo)
		}

		audioType, err := core.ParseAudioType(fields[0])
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", lineNo, err)
		}

		item := core.RecordCreate{
			Type: audioType,
			Path: fields[1],
		}
		if len(fields) > 2 {
			item.Tags = strings.Split(fields[2], ",")
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func reembedCommand(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	revectorer, err := catalog.NewRevectorer(
		reembed.WithConfig(config),
		reembed.WithProgressWriter(os.Stderr),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Catalog: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := revectorer.Run(context.Background()); err != nil {
		return fmt.Errorf("re-embedding failed: %w", err)
	}
	return nil
}

func parseID(c *cli.Context) (core.ID, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one record ID")
	}
	var id uint64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid record ID %q", c.Args().First())
	}
	return core.ID(id), nil
}

func printRecord(record *core.AudioRecord) {
	fmt.Printf("ID:          %d\n", record.Id)
	fmt.Printf("Path:        %s\n", record.Path)
	fmt.Printf("Description: %s\n", record.Description)
	fmt.Printf("Type:        %s\n", record.Type)
	fmt.Printf("Tags:        %s\n", strings.Join(record.Tags, ", "))
	fmt.Printf("Duration:    %ds\n", record.Duration)
	fmt.Printf("Inserted:    %s\n", record.InsertedAt.Format(time.RFC3339))
	fmt.Printf("Updated:     %s\n", record.UpdatedAt.Format(time.RFC3339))
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
