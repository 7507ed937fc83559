package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"docbench/bench"
	"docbench/config"
	"docbench/mongo"
	"docbench/my"
	"docbench/pg"
	"docbench/query"
)

func main() {
	cmd := flag.NewFlagSet("docbench", flag.ExitOnError)

	// Backend selection
	backend := cmd.String("backend", "mongodb", "Backend: mongodb, postgres, mysql")
	workload := cmd.String("workload", "", "Workload YAML file with query definitions")

	// MongoDB connection
	uri := cmd.String("uri", "mongodb://localhost:27017", "MongoDB connection URI")

	// SQL connection (postgres, mysql)
	host := cmd.String("host", "", "Database host")
	port := cmd.Int("port", 0, "Database port")
	user := cmd.String("user", "", "Database user")
	pass := cmd.String("pass", "", "Database password")
	dbName := cmd.String("db", "bench", "Database name")

	// Benchmark parameters
	queries := cmd.Int("queries", 1000, "Measured iterations per query definition")
	concurrency := cmd.Int("concurrency", 1, "Concurrent workers")
	warmup := cmd.Int("warmup", 50, "Warmup iterations before measuring")
	sampleSize := cmd.Int("sample-size", 1000, "Records sampled per value pool")
	runs := cmd.Int("runs", 1, "Full runs for median reporting")
	timeout := cmd.Duration("timeout", 30*time.Second, "Per-call timeout at the data-access boundary")
	verbose := cmd.Bool("verbose", false, "Debug logging")

	cmd.Parse(os.Args[1:])

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *workload == "" {
		fmt.Println("Usage: docbench [flags]")
		fmt.Println()
		fmt.Println("Required flags:")
		fmt.Println("  -workload      Workload YAML file with query definitions")
		fmt.Println()
		fmt.Println("Backend flags:")
		fmt.Println("  -backend       mongodb, postgres, mysql (default: mongodb)")
		fmt.Println("  -uri           MongoDB URI (default: mongodb://localhost:27017)")
		fmt.Println("  -host/-port/-user/-pass/-db   SQL backends")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -queries       Measured iterations per definition (default: 1000)")
		fmt.Println("  -concurrency   Concurrent workers (default: 1)")
		fmt.Println("  -warmup        Warmup iterations (default: 50)")
		fmt.Println("  -sample-size   Records per value pool (default: 1000)")
		fmt.Println("  -runs          Full runs for median (default: 1)")
		fmt.Println("  -timeout       Per-call timeout (default: 30s)")
		os.Exit(1)
	}

	params := bench.BenchParams{
		Queries:     *queries,
		Concurrency: *concurrency,
		Warmup:      *warmup,
		SampleSize:  *sampleSize,
		Runs:        *runs,
		Timeout:     *timeout,
	}

	defs, err := config.Load(*workload)
	if err != nil {
		fmt.Printf("  ✗ Workload load failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  ✓ Loaded %d query definitions\n", len(defs))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connCfg := bench.ConnConfig{
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *pass,
		Database: *dbName,
	}

	var collaborator query.Collaborator
	switch *backend {
	case "mongodb":
		fmt.Println("[1/3] Connecting to MongoDB...")
		store, err := mongo.Connect(ctx, *uri, *dbName, params.Timeout)
		if err != nil {
			fmt.Printf("  ✗ Connection failed: %v\n", err)
			os.Exit(1)
		}
		defer store.Close(context.Background())
		collaborator = store
	case "postgres":
		fmt.Println("[1/3] Connecting to PostgreSQL...")
		pool, err := pg.Connect(connCfg, "disable")
		if err != nil {
			fmt.Printf("  ✗ Connection failed: %v\n", err)
			os.Exit(1)
		}
		store := pg.NewStore(pool, params.Timeout)
		defer store.Close()
		collaborator = store
	case "mysql":
		fmt.Println("[1/3] Connecting to MySQL...")
		db, err := my.Connect(connCfg)
		if err != nil {
			fmt.Printf("  ✗ Connection failed: %v\n", err)
			os.Exit(1)
		}
		store := my.NewStore(db, params.Timeout)
		defer store.Close()
		collaborator = store
	default:
		fmt.Printf("Unknown backend: %s\n", *backend)
		os.Exit(1)
	}
	fmt.Println("  ✓ Connected")

	fmt.Printf("\n[2/3] Loading value pools (sample size %d)...\n", params.SampleSize)
	pools, err := query.LoadPools(ctx, collaborator, defs, params.SampleSize)
	if err != nil {
		fmt.Printf("  ✗ Pool loading failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("  ✓ Pools ready")

	runner := &bench.Runner{
		Collaborator: collaborator,
		Generator:    query.NewGenerator(pools),
		Params:       params,
	}

	fmt.Println("\n[3/3] Running benchmark...")
	report := bench.RunMultiple(params.Runs, func(int) bench.Report {
		return runner.RunAll(ctx, defs)
	})

	for _, s := range report.Stats {
		bench.PrintStats(s)
	}
	bench.PrintSummary(report)
}
