package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stepviz/internal/compose"
	"stepviz/internal/config"
	"stepviz/internal/generator"
	"stepviz/internal/library"
	"stepviz/internal/narrate"
	"stepviz/internal/render"
	"stepviz/internal/server"
	"stepviz/internal/spec"
	"stepviz/internal/steps"
)

var (
	rootCmd = &cobra.Command{
		Use:   "stepviz",
		Short: "Steppable diagram presentations for learning tools",
	}
	cfgPath     string
	outPath     string
	applyScenes string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "Path to the stepviz config file")

	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the rendered artifact to this file instead of stdout")
	renderCmd.Flags().StringVar(&applyScenes, "scenes", "", "Comma-separated scene ids to apply before rendering")

	describeCmd.Flags().StringVar(&applyScenes, "scenes", "", "Comma-separated scene ids to apply before generating")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(narrateCmd)
}

func loadSpec(path string) *spec.Specification {
	s, err := spec.LoadFile(path)
	if err != nil {
		log.Fatalf("Failed to load specification: %v", err)
	}
	return s
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the presentation API over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		defer logger.Sync()

		lib := library.New(logger)

		// 1. Authored documents from the spec directory
		if _, err := os.Stat(cfg.Library.Dir); err == nil {
			n, err := lib.LoadDir(cfg.Library.Dir)
			if err != nil {
				log.Fatalf("Failed to load spec directory: %v", err)
			}
			fmt.Printf("📂 Loaded %d specifications from %s\n", n, cfg.Library.Dir)
		}

		// 2. Imported documents from the database
		if _, err := os.Stat(cfg.Library.Database); err == nil {
			store, err := library.NewSQLiteStore(cfg.Library.Database)
			if err != nil {
				log.Fatalf("Failed to open database: %v", err)
			}
			defer store.Close()

			stored, err := store.LoadAll(context.Background())
			if err != nil {
				log.Fatalf("Failed to load stored specifications: %v", err)
			}
			for _, s := range stored {
				lib.Put(s)
			}
			fmt.Printf("💾 Loaded %d specifications from %s\n", len(stored), cfg.Library.Database)
		}

		if cfg.Library.Watch {
			watcher, err := library.NewWatcher(lib, cfg.Library.Dir, logger)
			if err != nil {
				logger.Warn("spec directory watch disabled", zap.Error(err))
			} else {
				defer watcher.Close()
				fmt.Printf("👀 Watching %s for changes\n", cfg.Library.Dir)
			}
		}

		composer := compose.New(logger)
		builder := steps.NewBuilder(composer, logger)
		renderer := render.NewKrokiRenderer(cfg.Renderer.Endpoint, cfg.RendererTimeout(), logger)
		cache := render.NewCache(renderer, cfg.Cache.Capacity, logger)

		srv := server.New(lib, cache, composer, builder, cfg.PlayerInterval(), cfg.Server.CORSOrigins, logger)

		fmt.Printf("🚀 Serving %d specifications on %s\n", lib.Len(), cfg.Server.Addr)
		if err := http.ListenAndServe(cfg.Server.Addr, srv.Setup()); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [spec-file]",
	Short: "Render a specification through the external engine",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		s := loadSpec(args[0])
		if scenes := splitIDs(applyScenes); len(scenes) > 0 {
			s = compose.New(nil).MergeScenes(s, scenes)
		}

		renderer := render.NewKrokiRenderer(cfg.Renderer.Endpoint, cfg.RendererTimeout(), nil)
		cache := render.NewCache(renderer, cfg.Cache.Capacity, nil)

		artifact, err := cache.GetOrRender(context.Background(), s)
		if err != nil {
			fmt.Printf("⚠️  Render failed, emitting inline placeholder: %v\n", err)
		}

		if outPath == "" {
			os.Stdout.Write(artifact.Data)
			return
		}
		if err := os.WriteFile(outPath, artifact.Data, 0o644); err != nil {
			log.Fatalf("Failed to write artifact: %v", err)
		}
		fmt.Printf("✅ Wrote %s (%d bytes)\n", outPath, len(artifact.Data))
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe [spec-file]",
	Short: "Print the generated diagram description text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := loadSpec(args[0])
		if scenes := splitIDs(applyScenes); len(scenes) > 0 {
			s = compose.New(nil).MergeScenes(s, scenes)
		}
		fmt.Print(generator.Generate(s))
	},
}

var stepsCmd = &cobra.Command{
	Use:   "steps [spec-file]",
	Short: "Print the derived presentation steps for a specification",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := loadSpec(args[0])
		builder := steps.NewBuilder(nil, nil)
		built := builder.Build(s)

		if len(built) == 0 {
			fmt.Printf("Specification %q derives no steps (layout %s, no scenes)\n", s.ID, s.Layout.Kind)
			return
		}
		fmt.Printf("📑 %s — %d steps\n", s.Title, len(built))
		for _, step := range built {
			fmt.Printf("  %2d. [%s] %s (%d nodes, %d edges)\n",
				step.Index, step.Type, step.Caption, len(step.Spec.Nodes), len(step.Spec.Edges))
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [spec-file...]",
	Short: "Validate specification documents against the schema",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failures := 0
		for _, path := range args {
			if _, err := spec.LoadFile(path); err != nil {
				fmt.Printf("❌ %s: %v\n", path, err)
				failures++
				continue
			}
			fmt.Printf("✅ %s\n", path)
		}
		if failures > 0 {
			os.Exit(1)
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import a directory of specifications into the database",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		store, err := library.NewSQLiteStore(cfg.Library.Database)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer store.Close()

		lib := library.New(nil)
		n, err := lib.LoadDir(args[0])
		if err != nil {
			log.Fatalf("Failed to read directory: %v", err)
		}

		var all []*spec.Specification
		for _, summary := range lib.List() {
			if s, ok := lib.Get(summary.ID); ok {
				all = append(all, s)
			}
		}
		if err := store.SaveAll(context.Background(), all); err != nil {
			log.Fatalf("Failed to save specifications: %v", err)
		}
		fmt.Printf("🎉 Imported %d specifications into %s\n", n, cfg.Library.Database)
	},
}

var narrateCmd = &cobra.Command{
	Use:   "narrate [spec-file]",
	Short: "Draft narrative text for scenes that lack it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.AI.APIKey == "" {
			log.Fatal("Narration needs an API key (set STEPVIZ_API_KEY or ai.api_key)")
		}

		ctx := context.Background()
		narrator, err := narrate.New(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("Failed to create narrator: %v", err)
		}

		s := loadSpec(args[0])
		drafted := 0
		for _, scene := range s.Scenes {
			if scene.Narrative != "" {
				continue
			}
			text, err := narrator.NarrateScene(ctx, s, scene)
			if err != nil {
				fmt.Printf("⚠️  Scene %s: %v\n", scene.ID, err)
				continue
			}
			fmt.Printf("📝 %s: %s\n", scene.ID, text)
			drafted++
		}
		if drafted == 0 {
			fmt.Println("✅ Every scene already has narrative text.")
		}
	},
}

// splitIDs splits a comma-separated id list flag.
func splitIDs(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
