package process_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/skillsenselab/speechkit/process"
)

func TestRunCapturesOutput(t *testing.T) {
	tests := []struct {
		name       string
		cmd        process.Command
		wantStdout string
		wantStderr string
	}{
		{
			name:       "stdout",
			cmd:        process.Command{Binary: "echo", Args: []string{"segment", "one"}},
			wantStdout: "segment one",
		},
		{
			name:       "stderr",
			cmd:        process.Command{Binary: "sh", Args: []string{"-c", "echo 'ggml init failed' >&2"}},
			wantStderr: "ggml init failed",
		},
		{
			name:       "stdin piped through",
			cmd:        process.Command{Binary: "cat", Stdin: strings.NewReader("raw pcm bytes")},
			wantStdout: "raw pcm bytes",
		},
		{
			name:       "extra env visible to child",
			cmd:        process.Command{Binary: "sh", Args: []string{"-c", "echo $WHISPER_THREADS"}, Env: []string{"WHISPER_THREADS=4"}},
			wantStdout: "4",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := process.Run(context.Background(), tc.cmd)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.ExitCode != 0 {
				t.Errorf("exit code = %d, want 0", res.ExitCode)
			}
			if got := strings.TrimSpace(string(res.Stdout)); got != tc.wantStdout {
				t.Errorf("stdout = %q, want %q", got, tc.wantStdout)
			}
			if got := strings.TrimSpace(string(res.Stderr)); got != tc.wantStderr {
				t.Errorf("stderr = %q, want %q", got, tc.wantStderr)
			}
		})
	}
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "exit 42"},
	})
	if err == nil {
		t.Fatal("want an error for a non-zero exit")
	}
	if res.ExitCode != 42 {
		t.Errorf("exit code = %d, want 42", res.ExitCode)
	}
}

func TestRunRequiresBinary(t *testing.T) {
	if _, err := process.Run(context.Background(), process.Command{}); err == nil {
		t.Fatal("want an error when Binary is empty")
	}
}

func TestRunReportsDuration(t *testing.T) {
	res, err := process.Run(context.Background(), process.Command{
		Binary: "sleep",
		Args:   []string{"0.1"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Duration < 50*time.Millisecond {
		t.Errorf("duration = %v, implausibly short", res.Duration)
	}
}

func TestRunKilledByCaller(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := process.Run(ctx, process.Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("want an error when the context expires")
	}
	if res.Duration > 5*time.Second {
		t.Errorf("took %v to die, grace period was 500ms", res.Duration)
	}
}

func TestRunKilledByTimeout(t *testing.T) {
	res, err := process.Run(context.Background(), process.Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		Timeout:     100 * time.Millisecond,
		GracePeriod: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("want an error when Timeout expires")
	}
	if res.Duration > 5*time.Second {
		t.Errorf("took %v to die, grace period was 500ms", res.Duration)
	}
}
