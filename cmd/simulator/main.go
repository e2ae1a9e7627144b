// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdk "github.com/somcorpus/corpuswatch/sdk/golang"
)

func main() {
	cfg := sdk.Config{
		ServerURL:      "http://localhost:8080",
		SourceName:     "Wikipedia-Somali",
		Kind:           "web-fetch",
		Enabled:        true,
		DataDir:        ".",
		ReportInterval: time.Minute,
	}

	client, err := sdk.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fetched := int64(1200)
	written := int64(1000)
	dupes := int64(80)
	tooShort := int64(60)
	langFail := int64(40)

	client.SetProvider(func() map[string]interface{} {
		fetched += int64(rand.Intn(200))
		written += int64(rand.Intn(160))
		dupes += int64(rand.Intn(12))
		tooShort += int64(rand.Intn(8))
		langFail += int64(rand.Intn(6))

		rejected := dupes + tooShort + langFail
		quality := float64(written) / float64(written+rejected)

		log.Printf("Simulated run: fetched=%d written=%d rejected=%d quality=%.3f",
			fetched, written, rejected, quality)

		return map[string]interface{}{
			"source":          cfg.SourceName,
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
			"itemsFetched":    fetched,
			"recordsWritten":  written,
			"qualityPassRate": quality,
			"dedupRate":       float64(dupes) / float64(fetched),
			"httpSuccessRate": 0.95 + rand.Float64()*0.05,
			"filterBreakdown": map[string]interface{}{
				"duplicate_filter":   dupes,
				"min_length_filter":  tooShort,
				"language_id_filter": langFail,
			},
			"textLengthStats": map[string]interface{}{
				"mean": 820 + rand.Float64()*120,
			},
		}
	})

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Println("Stopping simulator...")
		cancel()
	}()

	log.Println("Starting simulator (Register -> Activate -> Loop)...")
	client.Start(ctx)
	log.Println("Simulator stopped.")
}
