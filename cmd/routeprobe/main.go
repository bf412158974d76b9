// routeprobe is an operational diagnostic: it polls the routing service
// until it reports ready (or the wait budget runs out), then prints the
// road-type catalog and the current blockage set. Exit status is zero only
// when the service came up.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/routelab/routeboard/internal/adapters/routing"
	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/pkg/config"
)

func main() {
	wait := flag.Duration("wait", 2*time.Minute, "how long to wait for readiness")
	interval := flag.Duration("interval", 5*time.Second, "poll interval")
	flag.Parse()

	cfg, err := config.Load("routeboard-probe")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := routing.NewClient(cfg.Routing.BaseURL, time.Duration(cfg.Routing.Timeout)*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), *wait)
	defer cancel()

	fmt.Printf("probing %s (up to %s)\n", cfg.Routing.BaseURL, *wait)

	if !waitForReady(ctx, client, *interval) {
		fmt.Println("routing service did not become ready")
		os.Exit(1)
	}
	fmt.Println("routing service is ready")

	report(ctx, client)
}

func waitForReady(ctx context.Context, client *routing.Client, interval time.Duration) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ready, err := client.Ready(ctx)
		if err != nil {
			log.Printf("readiness check: %v", err)
		}
		if ready {
			return true
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false
		}
	}
}

func report(ctx context.Context, client *routing.Client) {
	all, err := client.AllRoadTypes(ctx)
	if err != nil {
		log.Printf("road types: %v", err)
	} else {
		fmt.Printf("road types known: %d\n", len(all))
		for _, t := range all {
			fmt.Printf("  %s\n", t)
		}
	}

	valid, err := client.ValidRoadTypes(ctx)
	if err != nil {
		log.Printf("valid road types: %v", err)
	} else {
		fmt.Printf("road types active: %d\n", len(valid))
	}

	fc, err := client.Blockages(ctx)
	if err != nil {
		log.Printf("blockages: %v", err)
		return
	}
	list := domain.BlockageList(fc)
	fmt.Printf("blockages: %d\n", len(list))
	for _, b := range list {
		fmt.Printf("  %s: %s\n", b.Name, b.Description)
	}
}
