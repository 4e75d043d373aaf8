package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/sipschool/internal/database"
	"github.com/example/sipschool/internal/importer"
	"github.com/example/sipschool/internal/scheduler"
)

// logNotifier writes reminders to the log. Delivery transports (email,
// push) hook in by replacing this with a real Notifier.
type logNotifier struct{}

func (logNotifier) SendReminder(userID int64, dueCount int) error {
	log.Printf("User %d has %d questions due for review", userID, dueCount)
	return nil
}

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	conceptsFile := flag.String("import-concepts", "", "import concepts from an xlsx/csv file and exit")
	weightsFile := flag.String("import-weights", "", "import question-concept weights from an xlsx file and exit")
	skipSeed := flag.Bool("skip-seed", false, "skip seeding the wine concept graph on startup")
	flag.Parse()

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !*skipSeed {
		if err := database.SeedConcepts(ctx); err != nil {
			log.Fatalf("Failed to seed concepts: %v", err)
		}
	}

	if *conceptsFile != "" {
		config := importer.DefaultImportConfig()
		config.FilePath = *conceptsFile
		result, err := importer.ImportConcepts(ctx, config)
		if err != nil {
			log.Fatalf("Concept import failed: %v", err)
		}
		log.Printf("Imported %d concepts and %d relations (%d rows, %d skipped, %d errors)",
			result.ConceptsCreated, result.RelationsCreated, result.TotalProcessed, result.Skipped, len(result.Errors))
		for _, e := range result.Errors {
			log.Printf("  %s", e)
		}
		return
	}

	if *weightsFile != "" {
		config := importer.DefaultWeightConfig()
		config.FilePath = *weightsFile
		result, err := importer.ImportQuestionWeights(ctx, config)
		if err != nil {
			log.Fatalf("Weight import failed: %v", err)
		}
		log.Printf("Imported %d question-concept weights (%d rows, %d errors)",
			result.RelationsCreated, result.TotalProcessed, len(result.Errors))
		for _, e := range result.Errors {
			log.Printf("  %s", e)
		}
		return
	}

	jobs := scheduler.New(logNotifier{})
	jobs.Start()
	defer jobs.Stop()

	log.Println("Review scheduler started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
}
