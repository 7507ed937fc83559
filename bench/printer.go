package bench

import (
	"fmt"
	"time"
)

// PrintStats renders one definition's latency box.
func PrintStats(s QueryStats) {
	fmt.Printf("\n┌─────────────────────────────────────────┐\n")
	fmt.Printf("│  %-39s│\n", s.Name)
	fmt.Printf("├─────────────────────────────────────────┤\n")
	if s.ConfigErr != "" {
		fmt.Printf("│  REJECTED: %-29s│\n", truncate(s.ConfigErr, 29))
		fmt.Printf("└─────────────────────────────────────────┘\n")
		return
	}
	fmt.Printf("│  Queries:      %-24d│\n", s.Total)
	fmt.Printf("│  Success:      %-24d│\n", s.Success)
	fmt.Printf("│  Failures:     %-24d│\n", s.Failures)
	fmt.Printf("│  Empty match:  %-24d│\n", s.Empty)
	fmt.Printf("│  Duration:     %-24s│\n", s.Duration.Round(time.Millisecond))
	fmt.Printf("│  Throughput:   %-24s│\n", fmt.Sprintf("%.1f q/s (1000/mean)", s.Throughput))
	fmt.Printf("│  QPS (wall):   %-24.1f│\n", s.QPS)
	fmt.Printf("│  Avg results:  %-24.1f│\n", s.AvgResults)
	fmt.Printf("├─────────────────────────────────────────┤\n")
	fmt.Printf("│  Latency avg:  %-24s│\n", FmtDur(s.LatencyAvg))
	fmt.Printf("│  Latency min:  %-24s│\n", FmtDur(s.LatencyMin))
	fmt.Printf("│  Latency max:  %-24s│\n", FmtDur(s.LatencyMax))
	fmt.Printf("│  Latency p50:  %-24s│\n", FmtDur(s.LatencyP50))
	fmt.Printf("│  Latency p75:  %-24s│\n", FmtDur(s.LatencyP75))
	fmt.Printf("│  Latency p90:  %-24s│\n", FmtDur(s.LatencyP90))
	fmt.Printf("│  Latency p95:  %-24s│\n", FmtDur(s.LatencyP95))
	fmt.Printf("│  Latency p99:  %-24s│\n", FmtDur(s.LatencyP99))
	fmt.Printf("└─────────────────────────────────────────┘\n")
}

// PrintSummary renders the whole-run table, one row per definition. A
// row always renders, including rejected definitions and definitions
// with zero successes.
func PrintSummary(r Report) {
	fmt.Printf("\n╔══════════════════════════╦═══════╦═══════╦══════════╦══════════╦══════════╦═══════════╗\n")
	fmt.Printf("║  Query                   ║  OK   ║ Fail  ║   p50    ║   p95    ║   p99    ║   q/s     ║\n")
	fmt.Printf("╠══════════════════════════╬═══════╬═══════╬══════════╬══════════╬══════════╬═══════════╣\n")
	for _, s := range r.Stats {
		if s.ConfigErr != "" {
			fmt.Printf("║  %-23s ║ %-55s ║\n", truncate(s.Name, 23), truncate("REJECTED: "+s.ConfigErr, 55))
			continue
		}
		fmt.Printf("║  %-23s ║ %5d ║ %5d ║ %8s ║ %8s ║ %8s ║ %9.1f ║\n",
			truncate(s.Name, 23), s.Success, s.Failures,
			FmtDur(s.LatencyP50), FmtDur(s.LatencyP95), FmtDur(s.LatencyP99),
			s.Throughput)
	}
	fmt.Printf("╚══════════════════════════╩═══════╩═══════╩══════════╩══════════╩══════════╩═══════════╝\n")
	fmt.Printf("  Run %s finished in %s\n", r.RunID, r.Duration.Round(time.Millisecond))
}

func FmtDur(d time.Duration) string {
	us := float64(d.Microseconds())
	if us < 1000 {
		return fmt.Sprintf("%.0fµs", us)
	}
	return fmt.Sprintf("%.2fms", us/1000)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
