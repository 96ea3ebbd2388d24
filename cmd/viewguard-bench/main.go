package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/category"
	"github.com/viewguard/viewguard/internal/config"
	"github.com/viewguard/viewguard/internal/detection"
	"github.com/viewguard/viewguard/internal/fusion"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (optional, defaults apply)")
	n := flag.Int("n", 10000, "number of detections to fuse")
	seed := flag.Int64("seed", 1, "random seed for the synthetic stream")
	flag.Parse()

	cfg := &config.Config{}
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		if err := config.Validate(loaded); err != nil {
			log.Fatalf("validate config: %v", err)
		}
		cfg = loaded
	}

	eng := fusion.New(cfg.FusionConfig(), fusion.Options{Logger: zap.NewNop()})
	defer eng.Close()

	rng := rand.New(rand.NewSource(*seed))
	cats := []category.Category{
		category.Violence, category.Blood, category.Gore,
		category.LoudNoises, category.FlashingLights, category.Screaming,
	}
	sources := []category.Source{
		category.SourceVisual, category.SourceAudioWaveform, category.SourceText,
	}
	stream := make([]detection.Detection, *n)
	for i := range stream {
		stream[i] = detection.Detection{
			Source:     sources[rng.Intn(len(sources))],
			Category:   cats[rng.Intn(len(cats))],
			Timestamp:  float64(i) * 0.5,
			Confidence: 40 + rng.Float64()*60,
		}
	}

	// Warmup
	for i := 0; i < 5 && i < len(stream); i++ {
		if err := eng.AddDetection(stream[i]); err != nil {
			log.Fatalf("warmup fuse failed: %v", err)
		}
	}

	durations := make([]time.Duration, 0, len(stream))
	for _, d := range stream {
		start := time.Now()
		if err := eng.AddDetection(d); err != nil {
			log.Fatalf("fuse failed: %v", err)
		}
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	stats := eng.Stats()
	avg := float64(total.Microseconds()) / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds())
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds())

	fmt.Printf("bench: n=%d avg_us=%.2f p50_us=%.2f p95_us=%.2f warnings=%d suppressed=%d\n",
		len(durations), avg, p50, p95, stats.WarningsEmitted, stats.Suppressed)
}
