// cmd/touchsim/main.go
//
// touchsim runs the touch service against the in-memory controller and plays
// a short swipe, printing what a graphics layer would see.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"touchcode-go/drivers/spd2010"
	"touchcode-go/services/touch"
	"touchcode-go/services/touch/config"

	"tinygo.org/x/drivers"
)

type simBuses struct{ sim *spd2010.Sim }

func (b simBuses) ByID(id string) (drivers.I2C, bool) { return b.sim, id == config.DefaultBus }

func main() {
	logger := log.New(os.Stdout, "touchsim: ", log.Ltime|log.Lmicroseconds)
	sim := spd2010.NewSim()

	cfg := config.Default()
	cfg.Reset = nil
	cfg.Polled = true
	svc, err := touch.Build(cfg, touch.Resources{I2C: simBuses{sim}, Logger: logger})
	if err != nil {
		logger.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	for sim.State() != spd2010.SimRunning {
		time.Sleep(time.Millisecond)
	}
	logger.Print("controller running")

	// Swipe left to right, then lift.
	for x := uint16(40); x <= 360; x += 40 {
		sim.Touch(0, spd2010.Point{X: x, Y: 206, Weight: 40})
		time.Sleep(20 * time.Millisecond)
		if t := svc.Read(); t.Pressed {
			logger.Printf("touch x=%d y=%d weight=%d", t.X, t.Y, t.Weight)
		}
	}
	sim.Touch(0, spd2010.Point{X: 360, Y: 206, Weight: 0})
	time.Sleep(20 * time.Millisecond)
	if r := svc.Take(); r.Up {
		logger.Printf("release at %d,%d (pressed at %d,%d)", r.UpX, r.UpY, r.DownX, r.DownY)
	}
	sim.Gesture(2)
	time.Sleep(20 * time.Millisecond)
	logger.Printf("gesture %d", svc.Take().Gesture)

	cancel()
	if err := <-done; err != nil {
		logger.Fatal(err)
	}
}
