package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"exp/internal/db"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	dbPath := flag.String("db", "/tmp/fuzzyc/sweeps.db", "Path to database file")
	queryType := flag.String("query", "stats", "Query type: stats, sweeps, candidates, ranked, failed, k-stats, raw")
	sweepID := flag.Int64("sweep", 0, "Sweep ID for candidates and ranked (default: latest)")
	rawSQL := flag.String("sql", "", "Raw SQL query to execute")

	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	ctx := context.Background()

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	switch *queryType {
	case "stats":
		count, err := database.CountSweeps(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to count sweeps")
		}
		fmt.Printf("Total sweeps: %d\n", count)

	case "sweeps":
		sweeps, err := database.ListSweeps(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list sweeps")
		}
		printJSON(sweeps)

	case "candidates":
		candidates, err := database.ListCandidates(ctx, resolveSweep(ctx, database, *sweepID))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list candidates")
		}
		printJSON(candidates)

	case "ranked":
		ranked, err := database.GetRankedCandidates(ctx, resolveSweep(ctx, database, *sweepID))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to rank candidates")
		}
		printJSON(ranked)

	case "failed":
		failed, err := database.GetFailedCandidates(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get failed candidates")
		}
		printJSON(failed)

	case "k-stats":
		stats, err := database.GetKStats(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get k stats")
		}
		printJSON(stats)

	case "raw":
		if *rawSQL == "" {
			log.Fatal().Msg("Please provide SQL query with -sql flag")
		}
		rows, err := database.ExecuteRawQuery(ctx, *rawSQL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to execute query")
		}
		defer rows.Close()

		// Get column names
		cols, err := rows.Columns()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get columns")
		}

		// Print results
		fmt.Println("Columns:", cols)
		for rows.Next() {
			values := make([]any, len(cols))
			valuePtrs := make([]any, len(cols))
			for i := range values {
				valuePtrs[i] = &values[i]
			}

			if err := rows.Scan(valuePtrs...); err != nil {
				log.Fatal().Err(err).Msg("Failed to scan row")
			}

			for i, col := range cols {
				fmt.Printf("%s: %v\n", col, values[i])
			}
			fmt.Println("---")
		}

	default:
		log.Fatal().Str("query", *queryType).Msg("Unknown query type")
	}
}

// resolveSweep returns id, or the latest sweep when id is 0.
func resolveSweep(ctx context.Context, database *db.DB, id int64) int64 {
	if id != 0 {
		return id
	}
	sweeps, err := database.ListSweeps(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list sweeps")
	}
	if len(sweeps) == 0 {
		log.Fatal().Msg("No sweeps found in database")
	}
	return sweeps[0].ID
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode JSON")
	}
}
