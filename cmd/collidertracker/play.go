package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/meterosc"
	"github.com/schollz/collidertracker/internal/midiio"
	"github.com/schollz/collidertracker/internal/midiwire"
)

// playChunkFrames is how many frames FillAudioQueue is asked for per
// iteration of the play loop; real-time pacing then sleeps for the
// equivalent wall-clock duration. Actual audio output is an external
// collaborator (spec §1) this binary does not own; only MIDI and OSC
// meter levels are forwarded.
const playChunkFrames = 4096

func newPlayCmd() *cobra.Command {
	var (
		loadPath   string
		sampleRate int
		midiOut    string
		oscHost    string
		oscPort    int
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a project back in real time, forwarding MIDI and OSC meter levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadOrNewProject(loadPath)
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}
			p.SetSampleRate(coretypes.NewSampleRate(sampleRate))

			var device *midiio.Device
			if midiOut != "" {
				device, err = midiio.New(midiOut)
				if err != nil {
					return fmt.Errorf("open midi output %q: %w", midiOut, err)
				}
				if err := device.Open(); err != nil {
					return fmt.Errorf("open midi output %q: %w", midiOut, err)
				}
				defer device.Close()
			}

			var meter *meterosc.Broadcaster
			if oscHost != "" {
				meter = meterosc.New(oscHost, oscPort)
			}

			p.Play()
			chunkDuration := time.Duration(playChunkFrames) * time.Second / time.Duration(sampleRate)

			for !p.IsFinished() {
				if err := p.FillAudioQueue(playChunkFrames, midiOutFunc(device)); err != nil {
					log.Printf("[play] fill audio queue: %v", err)
				}
				rendered := p.DrainAudio(playChunkFrames)
				if meter != nil {
					// Real track Uids are allocated starting at 1; 0 stands
					// in for the master bus, since only the mixed buffer is
					// available at this layer.
					meter.SendTrackVolume(coretypes.TrackUid(0), meterosc.PeakLevel(rendered))
				}
				time.Sleep(chunkDuration)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&loadPath, "load", "", "load a saved project file; empty plays a blank project")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 44100, "playback sample rate in Hz")
	cmd.Flags().StringVar(&midiOut, "midi-out", "", "MIDI output device name to forward routed messages to")
	cmd.Flags().StringVar(&oscHost, "osc-host", "", "OSC host to broadcast peak meter levels to; empty disables")
	cmd.Flags().IntVar(&oscPort, "osc-port", 57120, "OSC port to broadcast peak meter levels to")

	return cmd
}

func midiOutFunc(device *midiio.Device) func(midiwire.Channel, midiwire.Message) {
	if device == nil {
		return nil
	}
	return device.Send
}
