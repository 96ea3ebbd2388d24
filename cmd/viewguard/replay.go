package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/attention"
	"github.com/viewguard/viewguard/internal/bayes"
	"github.com/viewguard/viewguard/internal/emit"
	"github.com/viewguard/viewguard/internal/escalation"
	"github.com/viewguard/viewguard/internal/fusion"
	"github.com/viewguard/viewguard/internal/replay"
	"github.com/viewguard/viewguard/internal/telemetry"
	"github.com/viewguard/viewguard/internal/temporal"
)

var (
	replayInput   string
	snapshotPath  string
	metricsAddr   string
	printWarnings bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a JSONL event stream through a fresh engine",
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayInput, "input", "i", "-", "JSONL event file ('-' for stdin)")
	replayCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "attention snapshot to restore before and save after the run")
	replayCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "optional Prometheus scrape address, e.g. :9115")
	replayCmd.Flags().BoolVar(&printWarnings, "print-warnings", true, "print fused warnings to stdout")
}

func buildEngine(log *zap.Logger) (*fusion.Engine, *attention.Mechanism) {
	attn := attention.New(cfg.AttentionConfig(), log)
	eng := fusion.New(cfg.FusionConfig(), fusion.Options{
		Attention:   attn,
		Regularizer: temporal.New(cfg.TemporalConfig(), cfg.SceneAdjustments, log),
		Calculator:  bayes.New(cfg.BayesTables(), log),
		Escalation:  escalation.New(cfg.Patterns, log),
		Logger:      log,
	})
	return eng, attn
}

func buildSinks(log *zap.Logger) ([]emit.Sink, error) {
	var sinks []emit.Sink
	if cfg.Emitter.FilePath != "" {
		s, err := emit.NewFileSink(cfg.Emitter.FilePath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.Emitter.WebhookURL != "" {
		timeout := time.Duration(cfg.Emitter.WebhookTimeoutMs) * time.Millisecond
		s, err := emit.NewWebhookSink(cfg.Emitter.WebhookURL, cfg.Emitter.WebhookHeaders, timeout)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) > 0 {
		log.Info("warning sinks configured", zap.Int("count", len(sinks)))
	}
	return sinks, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	log := zap.L()
	eng, attn := buildEngine(log)
	defer eng.Close()

	if snapshotPath != "" {
		if err := restoreSnapshot(attn, snapshotPath); err != nil {
			return err
		}
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(telemetry.NewCollector(eng.Stats))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	sinks, err := buildSinks(log)
	if err != nil {
		return err
	}
	var emitter *emit.Emitter
	sub := eng.Subscribe()
	done := make(chan struct{})
	if len(sinks) > 0 {
		emitter = emit.New(cfg.EmitConfig(), sinks, log)
	}
	go func() {
		defer close(done)
		for w := range sub.C {
			if printWarnings {
				line, _ := json.Marshal(w)
				fmt.Println(string(line))
			}
			if emitter != nil {
				warning := w
				emitter.Emit(&warning)
			}
		}
	}()

	in := os.Stdin
	if replayInput != "" && replayInput != "-" {
		f, err := os.Open(replayInput)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	sum, err := replay.Run(in, eng, log)
	if err != nil {
		return err
	}

	eng.Unsubscribe(sub.ID)
	<-done
	if emitter != nil {
		emitter.Close(context.Background())
	}

	if snapshotPath != "" {
		if err := saveSnapshot(attn, snapshotPath); err != nil {
			return err
		}
	}

	stats := eng.Stats()
	log.Info("replay complete",
		zap.Int("lines", sum.Lines),
		zap.Int("detections", sum.Detections),
		zap.Int("cues", sum.Cues),
		zap.Int("rejected", sum.Rejected),
		zap.Int("warnings_emitted", stats.WarningsEmitted),
		zap.Int("suppressed", stats.Suppressed),
	)
	return nil
}

func restoreSnapshot(attn *attention.Mechanism, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // first run: nothing to restore
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap attention.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	attn.Restore(snap)
	return nil
}

func saveSnapshot(attn *attention.Mechanism, path string) error {
	data, err := json.MarshalIndent(attn.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
