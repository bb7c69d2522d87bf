package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"portfolio-engine/domain"
	"portfolio-engine/repositories"
)

func main() {
	dbPath := flag.String("db", "/tmp/portfolio-engine", "Path to badger DB")
	// Par défaut on cherche "portfolio:" pour éviter de percuter les index asset: et owner:
	prefix := flag.String("prefix", "portfolio:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Entity ID", "Version", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			rawKey := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(toRow(rawKey, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func toRow(key string, val []byte) []string {
	namespace := strings.SplitN(key, ":", 2)[0]

	switch namespace {
	case "portfolio":
		var p domain.Portfolio
		if err := json.Unmarshal(val, &p); err != nil {
			return rawRow(key, val)
		}
		holdings := make([]string, 0, len(p.Holdings))
		for _, h := range p.Holdings {
			holdings = append(holdings, fmt.Sprintf("%s=%s", h.Asset, h.Quantity))
		}
		return []string{key, "PORTFOLIO", shorten(string(p.ID)), fmt.Sprint(p.Version),
			fmt.Sprintf("owner=%s %s", p.OwnerID, strings.Join(holdings, " "))}
	case "deadletter":
		var letter repositories.DeadLetter
		if err := json.Unmarshal(val, &letter); err != nil {
			return rawRow(key, val)
		}
		return []string{key, strings.ToUpper(string(letter.Disposition)), shorten(letter.EventID.String()),
			fmt.Sprint(letter.Attempts), letter.Reason}
	default:
		return rawRow(key, val)
	}
}

func rawRow(key string, val []byte) []string {
	return []string{key, "RAW", "--------", "-", fmt.Sprintf("Size: %d bytes", len(val))}
}

// shorten keeps the first 8 characters of an id for readability.
func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}
