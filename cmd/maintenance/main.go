package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/locvowork/employee_records/internal/bootstrap"
	"github.com/locvowork/employee_records/internal/config"
	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear, sweep")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large")
	count := flag.Int("count", 0, "Number of employees to seed (overrides preset)")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt of clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("Employee records maintenance")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	seeder := database.NewDataSeeder(app.Service)

	// Execute action
	switch *action {
	case "seed":
		n := *count
		if n <= 0 {
			n = database.GetPresetCount(database.SeedPreset(*preset))
		}
		created, err := seeder.SeedData(ctx, n)
		if err != nil {
			log.Fatalf("Seeding failed after %d employees: %v", created, err)
		}
		fmt.Printf("Created %d employees\n", created)

	case "clear":
		if !*yes && !confirm("This will delete every employee and image. Continue? (yes/no): ") {
			fmt.Println("Cancelled.")
			return
		}
		removed, err := seeder.ClearData(ctx)
		if err != nil {
			log.Fatalf("Clear failed after %d employees: %v", removed, err)
		}
		fmt.Printf("Deleted %d employees\n", removed)

	case "sweep":
		employees, err := app.Service.List(ctx)
		if err != nil {
			log.Fatalf("Failed to list employees: %v", err)
		}
		referenced := make(map[string]struct{}, len(employees))
		for _, e := range employees {
			if e.ImageURL != nil {
				referenced[*e.ImageURL] = struct{}{}
			}
		}
		removed, err := app.Blobs.Sweep(ctx, referenced, config.DefaultEnvConfig.ORPHAN_GRACE_PERIOD)
		if err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		logger.InfoLog(ctx, "sweep removed %d orphaned uploads", removed)
		fmt.Printf("Removed %d orphaned files\n", removed)

	default:
		fmt.Printf("Unknown action: %s\n", *action)
		flag.PrintDefaults()
		os.Exit(2)
	}

	fmt.Println("Done!")
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}
