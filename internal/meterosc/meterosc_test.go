package meterosc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/collidertracker/internal/coretypes"
)

func TestPeakLevelFindsLargestAbsoluteSample(t *testing.T) {
	buf := []coretypes.StereoSample{
		{Left: 0.1, Right: -0.2},
		{Left: -0.9, Right: 0.3},
		{Left: 0.05, Right: 0.05},
	}
	assert.Equal(t, float32(0.9), PeakLevel(buf))
}

func TestPeakLevelOfSilenceIsZero(t *testing.T) {
	buf := make([]coretypes.StereoSample, 8)
	assert.Equal(t, float32(0), PeakLevel(buf))
}

func TestNilClientBroadcasterDoesNotPanic(t *testing.T) {
	b := &Broadcaster{}
	assert.NotPanics(t, func() {
		b.SendTrackVolume(coretypes.TrackUid(1), 0.5)
	})
}
