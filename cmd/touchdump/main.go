// cmd/touchdump/main.go
//
// touchdump runs the touch service on a Linux host (periph.io buses and pins)
// and prints every report as it arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"touchcode-go/errcode"
	"touchcode-go/services/touch"
	"touchcode-go/services/touch/config"
)

func main() {
	cfgPath := flag.String("config", "", "JSON touch config; board defaults when empty")
	bus := flag.String("bus", "", "override the I²C bus name (e.g. 1)")
	polled := flag.Bool("polled", false, "ignore the INT line and poll every interval")
	frame := flag.Duration("frame", 16*time.Millisecond, "report interval")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		if cfg, err = config.Parse(b); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if *bus != "" {
		cfg.Bus = *bus
		if cfg.Reset != nil {
			cfg.Reset.Bus = *bus
		}
	}
	cfg.Polled = cfg.Polled || *polled

	svc, err := touch.Build(cfg, touch.Resources{})
	if err != nil {
		log.Fatalf("build (%s): %v", errcode.Of(err), err)
	}
	if fw, err := svc.Device().ReadFirmware(); err != nil {
		log.Printf("firmware: %v", err)
	} else {
		log.Printf("firmware: pid=%#04x dver=%#04x", fw.PID, fw.DVer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	tick := time.NewTicker(*frame)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := <-done; err != nil {
				log.Fatal(err)
			}
			return
		case <-tick.C:
			r := svc.Take()
			if r.Count == 0 && r.Gesture == 0 && !r.Up {
				continue
			}
			fmt.Printf("n=%d/%d gesture=%d", r.Count, r.Reported, r.Gesture)
			for _, p := range r.Slice() {
				fmt.Printf(" [%d %d,%d w%d]", p.ID, p.X, p.Y, p.Weight)
			}
			if r.Down {
				fmt.Printf(" down@%d,%d", r.DownX, r.DownY)
			}
			if r.Up {
				fmt.Printf(" up@%d,%d", r.UpX, r.UpY)
			}
			fmt.Println()
		}
	}
}
