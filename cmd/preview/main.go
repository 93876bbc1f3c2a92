package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proofpop/internal/engine"
	"proofpop/internal/pixel"
	"proofpop/internal/render"
)

func main() {
	siteID := flag.String("site", "", "site id to preview")
	pageURL := flag.String("url", "https://example.com/", "page URL the pixel runs on")
	baseURL := flag.String("api", "http://localhost:8080", "backend base URL")
	width := flag.Int("width", 1280, "viewport width in pixels")
	duration := flag.Duration("for", 2*time.Minute, "how long to play notifications")
	test := flag.Bool("test", false, "show a test notification right away")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := pixel.NewDispatcher()
	dispatcher.On(pixel.EventReady, func(e pixel.Event) {
		fmt.Printf("ready: %v widgets, %v notifications\n", e.Detail["widgets"], e.Detail["notifications"])
	})
	dispatcher.On(pixel.EventVerified, func(e pixel.Event) {
		fmt.Printf("verified: %v\n", e.Detail["verified"])
	})

	p, err := pixel.Boot(ctx, pixel.Options{
		Host: pixel.Host{
			Script:        pixel.Element{Tag: "script", Attrs: map[string]string{"data-site-id": *siteID}},
			URL:           *pageURL,
			Title:         "ProofPop preview",
			UserAgent:     "proofpop-preview/1.0",
			ViewportWidth: *width,
			Session:       engine.NewMemoryStorage(),
			Persistent:    engine.NewMemoryStorage(),
		},
		BaseURL:    *baseURL,
		Surface:    render.NewTerminalSurface(os.Stdout),
		Dispatcher: dispatcher,
	})
	if err != nil {
		log.Fatalf("Failed to start preview: %v", err)
	}

	if *test {
		p.Debug().TriggerTest()
	}

	select {
	case <-ctx.Done():
	case <-time.After(*duration):
	}

	p.Stop()
	p.Wait()

	state, _ := json.MarshalIndent(p.Debug().State(), "", "  ")
	fmt.Println(string(state))
}
