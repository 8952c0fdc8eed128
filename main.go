package main

import (
	"context"
	"time"

	"touchcode-go/services/touch"
	"touchcode-go/services/touch/config"
	"touchcode-go/x/conv"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	svc, err := touch.Build(config.Default(), touch.Resources{})
	if err != nil {
		println("touch:", err.Error())
		return
	}
	if fw, err := svc.Device().ReadFirmware(); err == nil {
		var b [6]byte
		println("touch: pid", string(conv.U16Hex(b[:], fw.PID)), "dver", int(fw.DVer))
	}
	go svc.Run(context.Background())

	// Report touches at frame rate.
	tick := time.NewTicker(16 * time.Millisecond)
	defer tick.Stop()
	for range tick.C {
		t := svc.Read()
		if t.Pressed {
			println("touch", int(t.X), int(t.Y), "n", t.Count)
		}
	}
}
