// Package wavexport renders a project to 16-bit PCM stereo WAV (spec
// §6), reusing the decode-side go-audio/wav dependency in the opposite
// direction: encoding instead of decoding.
package wavexport

import (
	"io"
	"log"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/project"
)

const (
	bitDepth      = 16
	numChannels   = 2
	chunkFrames   = 64
	audioFormatPCM = 1
)

// Export renders p from its current position to w as 16-bit PCM stereo
// WAV whose header carries sampleRate (p's own rate is not read), stopping once both the project
// reports finished and the most recent 64-frame chunk was entirely
// silent (so an effect's decay tail isn't cut off mid-release).
func Export(p *project.Project, w io.WriteSeeker, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, numChannels, audioFormatPCM)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: numChannels},
		SourceBitDepth: bitDepth,
		Data:           make([]int, chunkFrames*numChannels),
	}

	chunk := make([]coretypes.StereoSample, chunkFrames)

	for {
		if err := p.RenderTick(chunk, nil); err != nil {
			log.Printf("[wavexport] render tick error: %v", err)
		}

		silent := true
		for i, s := range chunk {
			if !s.IsSilent() {
				silent = false
			}
			buf.Data[i*2] = toInt16(s.Left)
			buf.Data[i*2+1] = toInt16(s.Right)
		}

		if err := enc.Write(buf); err != nil {
			return err
		}

		if p.IsFinished() && silent {
			break
		}
	}

	return enc.Close()
}

// toInt16 converts a [-1,1] sample to a 16-bit signed PCM value with
// branchless sign handling, matching i16::MAX scaling: both polarities
// scale against 32767, so -1 maps to -32767 and 1 to 32767.
func toInt16(s coretypes.Sample) int {
	return int(math.Round(float64(s) * math.MaxInt16))
}
