package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/viewguard/viewguard/internal/detection"
)

func main() {
	addr := flag.String("addr", ":8099", "listen address for warning receiver")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/warning", handleWarning)
	mux.HandleFunc("/", handleWarning)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("warning receiver listening on %s (POST JSON to /warning)...", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("receiver error: %v", err)
	}
}

func handleWarning(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	var warning detection.FusedWarning
	if err := json.Unmarshal(body, &warning); err != nil {
		log.Printf("received non-warning payload: path=%s len=%d\n%s", r.URL.Path, len(body), string(body))
	} else {
		log.Printf("received warning: id=%s category=%s confidence=%.1f status=%s window=[%.1f,%.1f]",
			warning.ID, warning.Category, warning.Confidence, warning.Status, warning.StartTime, warning.EndTime)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintln(w, `{"status":"ok"}`)
}
