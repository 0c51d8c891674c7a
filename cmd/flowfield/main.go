// Command flowfield runs the particle simulation behind a glfw window, the
// same event-pump/keybinding shape as the teacher's voxelrt/rt_main.go:
// create a window, wire its callbacks to engine commands, then poll events
// and step the frame loop until the window closes. The engine itself never
// touches the window; rendering the particle buffer is left to whatever
// host embeds this loop for real (the simulation treats the render surface
// as an external collaborator), so this command's own window exists only
// to host input and a debug readout.
package main

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	mpm "github.com/flowfield/mpm"
	"github.com/flowfield/mpm/internal/core"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config overlay (defaults embedded)")
	sampleRate := flag.Int("sample-rate", 44100, "audio input sample rate in Hz")
	seed := flag.Int64("seed", 1, "particle pool / RNG seed")
	debug := flag.Bool("debug", false, "print per-frame live particle count and audio RMS")
	flag.Parse()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1280, 720, "flowfield", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	app, err := mpm.NewEngine(mpm.EngineOptions{
		ConfigPath: *configPath,
		SampleRate: *sampleRate,
		Seed:       *seed,
	})
	if err != nil {
		panic(err)
	}
	app.Build()

	requests := mpm.GetResource[mpm.PresetRequests](app)
	pool := mpm.GetResource[core.Pool](app)
	features := mpm.GetResource[mpm.AudioFeaturesState](app)

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyS:
			requests.Save("scene.json")
		case glfw.KeyL:
			requests.Load("scene.json")
		}
	})

	// This command never opens a microphone itself: the host's own audio
	// backend owns capture and is expected to call the AudioInput resource's
	// PushSamples from whatever callback its device driver hands it (see
	// DESIGN.md's internal/audio section for why no capture library is
	// wired in).

	for !window.ShouldClose() {
		glfw.PollEvents()
		app.Step()

		if requests.LastErr != nil {
			fmt.Println("flowfield: preset error:", requests.LastErr)
			requests.LastErr = nil
		}
		if *debug {
			fmt.Printf("\rflowfield: live=%d rms=%.3f\033[K", pool.LiveCount(), features.Features.RMS)
		}
	}
}
