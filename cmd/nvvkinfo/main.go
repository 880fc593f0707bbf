/*
Copyright 2025 The nvvk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// nvvkinfo probes the machine for the driver and display capabilities the
// library builds on and prints what it finds.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	nvvk "github.com/GhostKellz/nvvk"
)

type config struct {
	TargetFPS uint32 `toml:"target_fps"`
	Vrr       *struct {
		MinHz        uint32 `toml:"min_hz"`
		MaxHz        uint32 `toml:"max_hz"`
		LfcSupported bool   `toml:"lfc_supported"`
	} `toml:"vrr"`
}

func main() {
	configPath := flag.String("config", "", "optional TOML config overriding probed values")
	printManifest := flag.Bool("manifest", false, "print the layer manifest JSON and exit")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *printManifest {
		text, err := nvvk.NewLayerManifest().MarshalText()
		if err != nil {
			logger.Fatal("rendering manifest", zap.Error(err))
		}
		fmt.Println(string(text))
		return
	}

	var cfg config
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			logger.Fatal("reading config", zap.String("path", *configPath), zap.Error(err))
		}
	}
	if cfg.TargetFPS == 0 {
		cfg.TargetFPS = 60
	}

	v := nvvk.Version()
	logger.Info("nvvk",
		zap.Uint32("major", v>>16), zap.Uint32("minor", (v>>8)&0xFF), zap.Uint32("patch", v&0xFF))

	if !nvvk.IsNvidiaGPU() {
		logger.Warn("NVIDIA kernel module not loaded, extension surfaces will be absent")
	}
	if version, ok := nvvk.DetectDriverVersion(); ok {
		logger.Info("driver", zap.String("version", version.String()),
			zap.Bool("meets_recommended", version.MeetsRecommended()))
	} else {
		logger.Info("driver version unknown")
	}

	if loader, err := nvvk.OpenLoader(); err == nil {
		logger.Info("vulkan runtime present")
		loader.Close()
	} else {
		logger.Warn("vulkan runtime missing", zap.Error(err))
	}

	vrr, found := nvvk.DetectVrrDRM()
	if cfg.Vrr != nil {
		vrr = nvvk.VrrConfig{
			MinHz:        cfg.Vrr.MinHz,
			MaxHz:        cfg.Vrr.MaxHz,
			LfcSupported: cfg.Vrr.LfcSupported,
			Source:       nvvk.VrrSourceManual,
			Enabled:      true,
		}
		found = true
	}
	if !found {
		logger.Info("no VRR capable display")
		return
	}
	if err := vrr.Validate(); err != nil {
		logger.Fatal("vrr config", zap.Error(err))
	}

	pacer := nvvk.NewFramePacer(cfg.TargetFPS)
	logger.Info("display",
		zap.String("connector", vrr.DisplayName),
		zap.String("source", vrr.Source.String()),
		zap.Uint32("min_hz", vrr.MinHz),
		zap.Uint32("max_hz", vrr.MaxHz),
		zap.Bool("lfc", vrr.LfcSupported),
		zap.Float64("effective_min_hz", vrr.EffectiveMinHz()),
	)
	logger.Info("pacing",
		zap.Uint32("target_fps", cfg.TargetFPS),
		zap.Uint64("target_frame_time_us", pacer.TargetFrameTimeUs()),
		zap.Uint64("injection_interval_us", vrr.CalculateInjectionIntervalUs(pacer.TargetFrameTimeUs())),
	)
}
