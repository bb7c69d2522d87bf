package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"portfolio-engine/domain"
	"portfolio-engine/internal"
	"portfolio-engine/repositories"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (the engine) holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Start Debug Server Only
	// We provide an empty stats provider since the engine isn't running here
	emptyStats := func() map[string]any {
		return map[string]any{
			"Status": "Viewer Mode (Read-Only)",
			"Time":   time.Now().Format(time.RFC822),
		}
	}

	fmt.Printf("Viewer started at http://localhost:%d/inspect\n", config.DebugPort)

	internal.Inspect(db, config.DebugPort, "/inspect", PortfolioMapper, emptyStats, "portfolio:", nil)
}

// PortfolioMapper enriches portfolio rows with holdings and version details.
func PortfolioMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)
	if row.Namespace == "portfolio" {
		var p domain.Portfolio
		if err := json.Unmarshal(val, &p); err != nil {
			return row
		}
		row.Detail = fmt.Sprintf("owner=%s version=%d holdings=%d", p.OwnerID, p.Version, len(p.Holdings))
	}
	if row.Namespace == "deadletter" {
		var letter repositories.DeadLetter
		if err := json.Unmarshal(val, &letter); err != nil {
			return row
		}
		row.Detail = fmt.Sprintf("[%s] %s (attempts=%d)", letter.Disposition, letter.Reason, letter.Attempts)
	}
	return row
}
