// estiscan runs a batch dependency estimation over the numeric columns of a
// CSV or Excel file and prints the result table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"estiscan/adapters/ingest"
	"estiscan/adapters/postgres"
	"estiscan/adapters/rng"
	"estiscan/domain/core"
	"estiscan/domain/estimate"
	"estiscan/internal"
	"estiscan/internal/batch"
	"estiscan/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", "", "CSV or Excel file with named numeric columns")
	xList := flag.String("x", "", "comma-separated x variable names (default: all columns)")
	yList := flag.String("y", "", "comma-separated y variable names")
	lagList := flag.String("lags", "0", "comma-separated integer lags applied to y")
	k := flag.Int("k", estimate.DefaultK, "neighbor count")
	cond := flag.String("cond", "", "conditioning variable name")
	condLag := flag.Int("cond-lag", 0, "lag of the conditioning variable relative to x")
	permutations := flag.Int("permutations", 0, "shuffle repetitions for p-values (0 disables)")
	seed := flag.Int64("seed", 0, "random seed for permutation testing")
	workers := flag.Int("workers", 0, "parallel workers (0 = one per CPU)")
	save := flag.Bool("save", false, "persist the run to DATABASE_URL")
	entropyOnly := flag.Bool("entropy", false, "print per-variable differential entropy instead of a dependency table")
	flag.Parse()

	if *entropyOnly {
		if err := runEntropy(*file, *xList, *k); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*file, *xList, *yList, *lagList, *k, *cond, *condLag, *permutations, *seed, *workers, *save); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(file, xList, yList, lagList string, k int, cond string, condLag, permutations int, seed int64, workers int, save bool) error {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.DefaultLogger

	if file == "" {
		return fmt.Errorf("-file is required")
	}
	if yList == "" {
		return fmt.Errorf("-y is required")
	}

	reader := ingest.NewDataReader()
	vars, profiles, err := reader.Read(file)
	if err != nil {
		return err
	}
	logger.Info("loaded %d numeric columns from %s", len(vars), file)

	// Discreteness hints from the column profiles feed the mixed estimator
	// variant unless the caller overrides per variable.
	for _, p := range profiles {
		if p.LooksDiscrete {
			v := vars[p.Key]
			v.Discrete = true
			vars[p.Key] = v
			logger.Debug("column %s flagged discrete (%d distinct values)", p.Key, p.DistinctCount)
		}
	}

	xKeys := parseKeys(xList)
	if len(xKeys) == 0 {
		for key := range vars {
			xKeys = append(xKeys, key)
		}
	}
	yKeys := parseKeys(yList)

	lags, err := parseLags(lagList)
	if err != nil {
		return err
	}

	req := estimate.NewRequest(xKeys, yKeys)
	req.Lags = lags
	req.K = k
	req.CondVar = core.VariableKey(cond)
	req.CondLag = condLag
	req.Permutations = permutations
	req.Seed = seed
	req.Workers = workers
	if req.Workers == 0 {
		req.Workers = cfg.Estimator.Workers
	}

	engine := batch.NewEngine(rng.NewDeterministicRNG())
	table, err := engine.Estimate(context.Background(), vars, req)
	if err != nil {
		return err
	}

	printTable(table, permutations > 0)

	if save {
		if cfg.Database.URL == "" {
			return fmt.Errorf("-save requires DATABASE_URL")
		}
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(context.Background(), db); err != nil {
			return err
		}
		runRecord := estimate.NewRun(file, req, table)
		if err := postgres.NewRunRepository(db).SaveRun(context.Background(), runRecord); err != nil {
			return err
		}
		logger.Info("saved run %s", runRecord.ID)
	}

	return nil
}

// runEntropy prints the Kozachenko-Leonenko entropy of each selected column
func runEntropy(file, xList string, k int) error {
	_ = godotenv.Load()
	if file == "" {
		return fmt.Errorf("-file is required")
	}

	vars, _, err := ingest.NewDataReader().Read(file)
	if err != nil {
		return err
	}

	keys := parseKeys(xList)
	if len(keys) == 0 {
		for key := range vars {
			keys = append(keys, key)
		}
	}

	engine := batch.NewEngine(rng.NewDeterministicRNG())
	fmt.Printf("%-24s %12s\n", "variable", "entropy")
	for _, key := range keys {
		v, ok := vars[key]
		if !ok {
			return fmt.Errorf("column %s not found in %s", key, file)
		}
		h, err := engine.Entropy(context.Background(), v, k, nil)
		if err != nil {
			return err
		}
		fmt.Printf("%-24s %12.4f\n", key, h)
	}
	return nil
}

func printTable(table *estimate.Table, withP bool) {
	if withP {
		fmt.Printf("%-24s %-24s %6s %12s %12s %10s\n", "x", "y", "lag", "mi", "statistic", "p-value")
	} else {
		fmt.Printf("%-24s %-24s %6s %12s %12s\n", "x", "y", "lag", "mi", "statistic")
	}
	for _, cell := range table.Cells() {
		if withP {
			fmt.Printf("%-24s %-24s %6d %12.4f %12.4f %10.4f\n",
				cell.Key.X, cell.Key.Y, cell.Key.Lag, cell.MI, cell.Statistic, cell.PValue)
		} else {
			fmt.Printf("%-24s %-24s %6d %12.4f %12.4f\n",
				cell.Key.X, cell.Key.Y, cell.Key.Lag, cell.MI, cell.Statistic)
		}
		if cell.Degenerate() {
			fmt.Printf("%-24s   (%s)\n", "", cell.Degeneracy)
		}
	}
}

func parseKeys(list string) []core.VariableKey {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	keys := make([]core.VariableKey, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			keys = append(keys, core.VariableKey(name))
		}
	}
	return keys
}

func parseLags(list string) ([]int, error) {
	parts := strings.Split(list, ",")
	lags := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lag, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid lag %q: %w", p, err)
		}
		lags = append(lags, lag)
	}
	if len(lags) == 0 {
		lags = []int{0}
	}
	return lags, nil
}
