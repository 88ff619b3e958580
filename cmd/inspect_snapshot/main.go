package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"notesheet/internal/bootstrap"
	"notesheet/internal/config"
	"notesheet/internal/mapper"
	"notesheet/pkg/richtext"
	"notesheet/pkg/utils"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
)

// Prints every notebook and sheet held in the configured snapshot store.
func main() {
	cfg := config.Load()

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
	}

	repo, err := bootstrap.NewSnapshotRepository(cfg.Storage, rdb)
	if err != nil {
		color.Red("Failed to open storage: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	raw, err := repo.Get(ctx, cfg.Storage.Key)
	if err != nil {
		color.Red("Failed to read %q: %v", cfg.Storage.Key, err)
		os.Exit(1)
	}
	if raw == nil {
		color.Yellow("No snapshot stored under %q (driver %s)", cfg.Storage.Key, cfg.Storage.Driver)
		return
	}

	snapshot, migrated, err := mapper.NewSnapshotMapper().Decode(raw)
	if err != nil {
		color.Red("Snapshot is not readable: %v", err)
		os.Exit(1)
	}

	color.Cyan("🔍 SNAPSHOT %q (%d bytes, driver %s)", cfg.Storage.Key, len(raw), cfg.Storage.Driver)
	if !snapshot.LastSave.IsZero() {
		fmt.Printf("Last save: %s\n", snapshot.LastSave.Format(time.RFC3339))
	}
	if migrated > 0 {
		color.Yellow("%d legacy notebook(s) would be migrated on next load", migrated)
	}

	for _, nb := range snapshot.Notebooks {
		color.Green("\n📓 %s  [%s]  cover=%s", nb.Name, nb.Id, nb.Cover.Key())
		fmt.Printf("   created %s, updated %s\n", nb.Created.Format(time.RFC3339), nb.Updated.Format(time.RFC3339))
		for _, sheet := range nb.Sheets {
			fmt.Printf("   • %s  [%s]  %d words\n", sheet.Title, sheet.Id, richtext.WordCount(sheet.Content))
			if preview := utils.Truncate(richtext.PlainText(sheet.Content), 60); preview != "" {
				color.White("     %s", preview)
			}
		}
	}
}
