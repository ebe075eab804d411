// Package simulation drives the processing core against a synthetic
// transport so the meter ballistics and scene delivery can be observed
// without a live audio host.
package simulation

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/wavecraft-audio/wavecraft/internal/conf"
	"github.com/wavecraft-audio/wavecraft/internal/engine"
	"github.com/wavecraft-audio/wavecraft/internal/errors"
	"github.com/wavecraft-audio/wavecraft/internal/logging"
	"github.com/wavecraft-audio/wavecraft/internal/meter"
	"github.com/wavecraft-audio/wavecraft/internal/midictl"
	"github.com/wavecraft-audio/wavecraft/internal/observability"
	"github.com/wavecraft-audio/wavecraft/internal/scene"
	"github.com/wavecraft-audio/wavecraft/internal/timeline"
)

const (
	cycleFrames  = 512 // frames per processing cycle
	midiCapacity = 64  // MIDI events per cycle buffer
)

// Options are the simulate command's knobs on top of the loaded settings.
type Options struct {
	Seconds    float64 // simulated transport time
	ToneHz     float64 // test tone frequency
	ToneDBFS   float64 // test tone level in dBFS
	ReportSecs float64 // interval between meter reports
}

// transport is a free-running playback transport over a fixed frame rate.
type transport struct {
	frameRate int
	logger    *slog.Logger
}

func (t *transport) Rolling() bool       { return true }
func (t *transport) RecordEnabled() bool { return false }
func (t *transport) FrameRate() int      { return t.frameRate }
func (t *transport) RequestLocate(pos engine.FramePos) {
	t.logger.Info("locate requested", "frame", int64(pos))
}

// Run executes the simulation described by the settings and options. It
// blocks until the simulated time has elapsed and, when the telemetry
// endpoint is enabled, until an interrupt arrives so the endpoint stays
// scrapeable.
func Run(settings *conf.Settings, opts Options) error {
	logger := logging.ForService("simulation")
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Seconds <= 0 {
		return errors.Newf("simulated duration must be positive, got %g", opts.Seconds).
			Component("simulation").
			Category(errors.CategoryValidation).
			Build()
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	quitChan := make(chan struct{})

	if settings.Telemetry.Enabled {
		endpoint, err := observability.NewEndpoint(settings, metrics)
		if err != nil {
			return err
		}
		endpoint.Start(&wg, quitChan)
	}

	chn := engine.ChanCount{
		MIDI:  settings.Engine.MIDIChannels,
		Audio: settings.Engine.AudioChannels,
	}
	if chn.Audio == 0 {
		chn.Audio = 2
	}

	m := meter.New(settings.Main.Name, settings.Engine.SampleRate, settings.Metering)
	m.SetMetrics(metrics.Metering)
	m.SetTypeMask(meter.MeterPeak | meter.MeterKRMS | meter.MeterIEC2EBU | meter.MeterVU)
	if err := m.ConfigureChannels(chn, chn); err != nil {
		return err
	}

	trn := &transport{frameRate: settings.Engine.SampleRate, logger: logger}
	store := timeline.NewStore()
	changer := scene.NewChanger(settings.Main.Name, trn, store, settings.Scene)
	changer.SetMetrics(metrics.Scene)

	output := midictl.NewCycleOutput(midiCapacity)
	changer.BindOutput(output)

	seedScenes(store, settings.Engine.SampleRate, opts.Seconds)

	bufs := engine.NewBufferSet(chn, cycleFrames, midiCapacity)

	logger.Info("simulation starting",
		"samplerate", settings.Engine.SampleRate,
		"audio_channels", chn.Audio,
		"midi_channels", chn.MIDI,
		"seconds", opts.Seconds,
		"tone_hz", opts.ToneHz,
		"tone_dbfs", opts.ToneDBFS)

	runLoop(m, changer, output, bufs, chn, settings.Engine.SampleRate, opts)

	bank, program := changer.LastDelivered()
	logger.Info("simulation finished", "last_bank", bank, "last_program", program)

	if settings.Telemetry.Enabled {
		fmt.Printf("telemetry endpoint still serving on %s, press Ctrl+C to exit\n",
			settings.Telemetry.Listen)
		waitForInterrupt()
	}

	close(quitChan)
	wg.Wait()
	return nil
}

// runLoop advances the transport cycle by cycle, feeding a steady test
// tone, running both processors and sampling the meter on its own tick.
func runLoop(m *meter.Meter, changer *scene.Changer, output *midictl.CycleOutput, bufs *engine.BufferSet, chn engine.ChanCount, sampleRate int, opts Options) {
	totalFrames := engine.FramePos(float64(sampleRate) * opts.Seconds)
	tickFrames := sampleRate / 100 // meter sampling runs at 100 Hz
	reportFrames := engine.FramePos(float64(sampleRate) * opts.ReportSecs)
	if reportFrames <= 0 {
		reportFrames = engine.FramePos(sampleRate / 2)
	}

	amplitude := math.Pow(10, opts.ToneDBFS/20)
	phaseInc := 2 * math.Pi * opts.ToneHz / float64(sampleRate)

	var phase float64
	var sinceTick, sinceReport int

	for pos := engine.FramePos(0); pos < totalFrames; pos += cycleFrames {
		end := pos + cycleFrames
		if end > totalFrames {
			end = totalFrames
		}
		nframes := int(end - pos)

		phase = fillTone(bufs, chn, amplitude, phase, phaseInc, nframes)
		output.BeginCycle()

		changer.Run(bufs, pos, end, nframes)
		m.Run(bufs, pos, end, nframes)

		for _, ev := range output.EventBuffer(engine.FramePos(nframes)).Events() {
			fmt.Printf("%10d  scene event %s\n", int64(pos+ev.Offset), ev.Msg)
		}

		sinceTick += nframes
		for sinceTick >= tickFrames {
			m.Meter()
			sinceTick -= tickFrames
		}

		sinceReport += nframes
		if engine.FramePos(sinceReport) >= reportFrames {
			sinceReport = 0
			report(m, chn, pos)
		}
	}
}

// fillTone writes one cycle of a sine tone into every audio buffer and
// returns the advanced oscillator phase.
func fillTone(bufs *engine.BufferSet, chn engine.ChanCount, amplitude, phase, phaseInc float64, nframes int) float64 {
	block := make([]float32, nframes)
	p := phase
	for i := range block {
		block[i] = float32(amplitude * math.Sin(p))
		p += phaseInc
	}
	for c := 0; c < chn.Audio; c++ {
		bufs.Audio(c).Write(block)
	}
	return p
}

// report prints one line of display levels for the first audio slot.
func report(m *meter.Meter, chn engine.ChanCount, pos engine.FramePos) {
	n := chn.MIDI // first audio slot follows the MIDI slots
	fmt.Printf("%10d  peak %6.1f dB  max %6.1f dB  K %6.1f dB  PPM %6.1f dB  VU %6.1f dB\n",
		int64(pos),
		m.Level(n, meter.MeterPeak),
		m.Level(n, meter.MeterMaxPeak),
		m.Level(n, meter.MeterKRMS),
		m.Level(n, meter.MeterIEC2EBU),
		m.Level(n, meter.MeterVU))
}

// seedScenes drops two scene markers into the first and third quarter of
// the simulated timeline.
func seedScenes(store *timeline.Store, sampleRate int, seconds float64) {
	total := engine.FramePos(float64(sampleRate) * seconds)

	first := store.NewMarker("Scene 1", total/4)
	first.SetAutomation(&scene.Payload{Time: total / 4, Channel: 0, Bank: 2, Program: 5})
	store.Add(first)

	second := store.NewMarker("Scene 2", 3*total/4)
	second.SetAutomation(&scene.Payload{Time: 3 * total / 4, Channel: 0, Bank: scene.BankNone, Program: 12})
	store.Add(second)
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
