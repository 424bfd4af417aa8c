package ffmpeg

import (
	"testing"

	"github.com/setfreedom/moivetext/internal/domain/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showinfoSample = `
[Parsed_showinfo_1 @ 0x55d1] n:   0 pts:  36036 pts_time:1.2012   duration:   1001 fmt:yuv420p
[Parsed_showinfo_1 @ 0x55d1] n:   1 pts: 150150 pts_time:5.005    duration:   1001 fmt:yuv420p
frame=  300 fps= 60 q=-0.0 size=N/A time=00:00:10.00 bitrate=N/A
[Parsed_showinfo_1 @ 0x55d1] n:   2 pts: 270270 pts_time:9.009    duration:   1001 fmt:yuv420p
`

func TestParseSceneCuts(t *testing.T) {
	cuts := parseSceneCuts(showinfoSample)

	require.Len(t, cuts, 3)
	assert.InDelta(t, 1.2012, cuts[0], 1e-6)
	assert.InDelta(t, 5.005, cuts[1], 1e-6)
	assert.InDelta(t, 9.009, cuts[2], 1e-6)
}

func TestParseSceneCutsNoMatches(t *testing.T) {
	assert.Empty(t, parseSceneCuts("frame=  300 fps= 60\nnothing here\n"))
}

func TestBoundariesFromCutsCoverWholeVideo(t *testing.T) {
	// 10s at 30fps, cuts at 2s and 6s.
	got := boundariesFromCuts([]float64{2.0, 6.0}, 30, 300, 30)

	require.Equal(t, []port.SceneBoundary{
		{StartFrame: 0, EndFrame: 60},
		{StartFrame: 60, EndFrame: 180},
		{StartFrame: 180, EndFrame: 300},
	}, got)
}

func TestBoundariesFromCutsSuppressShortScenes(t *testing.T) {
	// Cut at 0.5s is closer than the 30-frame floor to frame 0 and is
	// suppressed; the next scene then starts at the 2s cut.
	got := boundariesFromCuts([]float64{0.5, 2.0}, 30, 300, 30)

	require.Equal(t, []port.SceneBoundary{
		{StartFrame: 0, EndFrame: 60},
		{StartFrame: 60, EndFrame: 300},
	}, got)
}

func TestBoundariesFromCutsNoCuts(t *testing.T) {
	got := boundariesFromCuts(nil, 25, 250, 25)

	require.Equal(t, []port.SceneBoundary{{StartFrame: 0, EndFrame: 250}}, got)
}

func TestBoundariesFromCutsIgnoreOutOfRange(t *testing.T) {
	got := boundariesFromCuts([]float64{2.0, 99.0}, 30, 300, 30)

	require.Equal(t, []port.SceneBoundary{
		{StartFrame: 0, EndFrame: 60},
		{StartFrame: 60, EndFrame: 300},
	}, got)
}

func TestBoundariesFromCutsDeterministic(t *testing.T) {
	cuts := []float64{1.0, 3.3, 7.77}
	first := boundariesFromCuts(cuts, 24, 240, 24)
	second := boundariesFromCuts(cuts, 24, 240, 24)
	assert.Equal(t, first, second)
}

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 29.97, parseFrameRate("30000/1001"), 0.01)
	assert.InDelta(t, 25.0, parseFrameRate("25/1"), 1e-9)
	assert.InDelta(t, 24.0, parseFrameRate("24"), 1e-9)
	assert.Equal(t, 0.0, parseFrameRate("30/0"))
}
