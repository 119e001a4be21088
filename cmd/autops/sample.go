package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

var (
	sampleRows int
	sampleDays int
	sampleOut  string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a demo access-log CSV",
	Long: `Writes a semicolon-delimited CSV of synthetic access-log rows in the
format the dashboard ingests, with a realistic mix of human and crawler
user-agents.`,
	Run: runSample,
}

func init() {
	sampleCmd.Flags().IntVarP(&sampleRows, "rows", "n", 500, "Number of rows to generate")
	sampleCmd.Flags().IntVar(&sampleDays, "days", 7, "Spread rows over this many days ending today")
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "sample.csv", "Output file (- for stdout)")
}

// crawlerAgents are appended to gofakeit's browser agents so every bot type
// the classifier knows shows up in the demo data.
var crawlerAgents = []string{
	"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	"Mozilla/5.0 (compatible; SemrushBot/7~bl; +http://www.semrush.com/bot.html)",
	"Mozilla/5.0 (compatible; AhrefsBot/7.0; +http://ahrefs.com/robot/)",
	"Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)",
	"curl/8.4.0 spider",
}

var samplePaths = []string{
	"/", "/index.html", "/products", "/products/42", "/blog",
	"/blog/go-dashboards", "/contact", "/login", "/api/health", "/pricing",
}

func runSample(cmd *cobra.Command, args []string) {
	out := os.Stdout
	if sampleOut != "-" {
		f, err := os.Create(sampleOut)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", sampleOut, err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	w.Comma = dataset.Delimiter

	header := []string{"date", "heure", "country", "city", "ip", "url", "user-agent", "visiteur"}
	if err := w.Write(header); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	if sampleDays < 1 {
		sampleDays = 1
	}

	faker := gofakeit.New(0)
	now := time.Now()

	for i := 0; i < sampleRows; i++ {
		day := now.AddDate(0, 0, -faker.Number(0, sampleDays-1))
		hour := faker.Number(0, 23)
		minute := faker.Number(0, 59)
		second := faker.Number(0, 59)

		ua := faker.UserAgent()
		// Roughly a third of traffic from crawlers
		if faker.Number(0, 2) == 0 {
			ua = crawlerAgents[faker.Number(0, len(crawlerAgents)-1)]
		}

		row := []string{
			day.Format(dataset.DateLayout),
			fmt.Sprintf("%02d:%02d:%02d", hour, minute, second),
			faker.Country(),
			faker.City(),
			faker.IPv4Address(),
			samplePaths[faker.Number(0, len(samplePaths)-1)],
			ua,
			fmt.Sprintf("v%04d", faker.Number(1, 200)),
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("Failed to write row: %v", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to flush output: %v", err)
	}

	if sampleOut != "-" {
		log.Printf("Wrote %d rows to %s", sampleRows, sampleOut)
	}
}
