package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"
)

const helperProbeJSON = `{
  "streams": [
    {"codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "r_frame_rate": "30/1"},
    {"codec_name": "aac", "codec_type": "audio"}
  ],
  "format": {"duration": "5.100000", "size": "2048000", "bit_rate": "3200000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

// stubCommand redirects subprocess launches to the test binary's helper
// process and returns a pointer to the captured argument list.
func stubCommand(t *testing.T, mode string) *[]string {
	t.Helper()
	var captured []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "MEDIA_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &captured
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	switch os.Getenv("MEDIA_HELPER_MODE") {
	case "probe-json":
		fmt.Print(helperProbeJSON)
	case "probe-garbage":
		fmt.Print("this is not json")
	case "success":
	case "fail":
		fmt.Fprintln(os.Stderr, "Invalid data found when processing input")
		os.Exit(1)
	case "sleep":
		time.Sleep(2 * time.Second)
	}
}
