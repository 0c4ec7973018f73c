package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandStringNamesAllValues(t *testing.T) {
	cases := map[Command]string{
		CommandQuit:              "quit",
		CommandToggleFullscreen:  "toggle_fullscreen",
		CommandTogglePause:       "toggle_pause",
		CommandToggleMute:        "toggle_mute",
		CommandVolumeUp:          "volume_up",
		CommandVolumeDown:        "volume_down",
		CommandStepFrame:         "step_frame",
		CommandCycleAudio:        "cycle_audio",
		CommandCycleVideo:        "cycle_video",
		CommandCycleSubtitle:     "cycle_subtitle",
		CommandCycleAll:          "cycle_all",
		CommandSeekBack10:        "seek_back_10",
		CommandSeekForward10:     "seek_forward_10",
		CommandSeekBack60:        "seek_back_60",
		CommandSeekForward60:     "seek_forward_60",
		CommandSeekChapterPrev:   "seek_chapter_prev",
		CommandSeekChapterNext:   "seek_chapter_next",
	}
	for cmd, want := range cases {
		assert.Equal(t, want, cmd.String())
	}
}

func TestCommandStringUnknownValue(t *testing.T) {
	assert.Equal(t, "unknown", Command(9999).String())
}
