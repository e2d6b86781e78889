package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/robomote/sphero"
)

var doScan = flag.Bool("scan", false, "Scan for Bluetooth devices")
var addr = flag.String("address", "", "Bluetooth address or name to connect to")
var configPath = flag.String("config", "", "Path to a yaml config file")

func main() {
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = LoadConfig(*configPath)
		if err != nil {
			fmt.Printf("Unable to load config: %s\n", err)
			os.Exit(1)
		}
	}
	if *addr != "" {
		cfg.Address = *addr
	}

	if *doScan {
		scan(cfg)
		return
	}

	if cfg.Address != "" {
		connect(cfg)
		return
	}

	flag.Usage()
}

func scan(cfg *Config) {
	ad, err := sphero.NewBluetoothAdapter(createLogger(cfg))
	if err != nil {
		fmt.Printf("Unable to create a bluetooth adapter: %s\n", err)
		os.Exit(1)
	}

	sr := ad.Scan()

	for r := range sr {
		fmt.Printf("Found device: %s, address: %s\n", r.Name, r.Address.String())
	}
}

func connect(cfg *Config) {
	logger := createLogger(cfg)

	adapter, err := sphero.NewBluetoothAdapter(logger)
	if err != nil {
		fmt.Printf("Unable to create a bluetooth adapter: %s\n", err)
		os.Exit(1)
	}

	s, err := sphero.NewSphero(cfg.Address, adapter, logger)
	if err != nil {
		fmt.Printf("Unable to create a new sphero: %s\n", err)
		os.Exit(1)
	}

	s.Ping()

	// announce ourselves before the color cycle starts
	sphero.DoWithDelay(300*time.Millisecond,
		func() { s.SetLEDColor(255, 255, 255) },
		func() { s.SetLEDColor(0, 0, 0) },
		func() { s.SetBackLED(cfg.Demo.BackLED) },
	)

	cycleColors(s, cfg.Demo)

	s.SetLEDColor(0, 0, 0)

	if err := s.GetLastError(); err != nil {
		fmt.Printf("Demo finished with errors: %s\n", err)
		os.Exit(1)
	}
}

// cycleColors walks the LED around the hue circle until the configured
// duration elapses.
func cycleColors(s *sphero.Sphero, cfg DemoConfig) {
	deadline := time.After(cfg.Duration)
	hue := 0.0

	for {
		select {
		case <-deadline:
			return
		default:
		}

		r, g, b := hsvToRGB(hue)
		s.SetLEDColor(r, g, b).Wait(cfg.CycleInterval)

		hue += cfg.HueStep
		if hue > 2*math.Pi {
			hue -= 2 * math.Pi
		}
	}
}

// hsvToRGB converts a hue angle in radians to RGB, assuming full
// saturation and value.
func hsvToRGB(h float64) (uint8, uint8, uint8) {
	r := uint8(math.Sin(h+math.Pi/3)*127.5 + 127.5)
	g := uint8(math.Sin(h)*127.5 + 127.5)
	b := uint8(math.Sin(h-math.Pi/3)*127.5 + 127.5)
	return r, g, b
}

func createLogger(cfg *Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Level: hclog.LevelFromString(cfg.LogLevel),
		Color: hclog.AutoColor,
	})
}
