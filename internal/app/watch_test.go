package app

import (
	"strings"
	"testing"
	"time"
)

func TestWatchCommand(t *testing.T) {
	if watchCmd.Use != "watch" {
		t.Errorf("expected Use to be 'watch', got '%s'", watchCmd.Use)
	}

	if watchCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if watchCmd.Long == "" {
		t.Error("expected Long description to be set")
	}

	if watchCmd.Example == "" {
		t.Error("expected Example to be set")
	}

	if watchCmd.RunE == nil {
		t.Error("expected RunE to be set")
	}
}

func TestWatchCommandFlags(t *testing.T) {
	tests := []struct {
		name         string
		flagName     string
		shouldHidden bool
	}{
		{"source flag", "source", false},
		{"schedule flag", "schedule", false},
		{"debounce flag", "debounce", false},
		{"daemon flag", "daemon", false},
		{"daemon-child flag", "daemon-child", true},
		{"pid-file flag", "pid-file", false},
		{"log-file flag", "log-file", false},
		{"stop flag", "stop", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := watchCmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("expected flag '%s' to be registered", tt.flagName)
			}
			if flag.Hidden != tt.shouldHidden {
				t.Errorf("flag '%s' hidden = %v, want %v", tt.flagName, flag.Hidden, tt.shouldHidden)
			}
		})
	}
}

func TestDaemonChildArgsForwardsFlags(t *testing.T) {
	origSource, origSchedule, origDebounce := watchFlagSource, watchFlagSchedule, watchFlagDebounce
	origPID, origLog, origCfg := watchPIDFile, watchLogFile, cfgPath
	defer func() {
		watchFlagSource, watchFlagSchedule, watchFlagDebounce = origSource, origSchedule, origDebounce
		watchPIDFile, watchLogFile, cfgPath = origPID, origLog, origCfg
	}()

	watchFlagSource = "/backups"
	watchFlagSchedule = "0 3 * * *"
	watchFlagDebounce = 5 * time.Second
	watchPIDFile = "/tmp/w.pid"
	watchLogFile = "/tmp/w.log"
	cfgPath = "/etc/snapsweep.yaml"

	args := strings.Join(daemonChildArgs(), " ")

	for _, want := range []string{
		"watch", "--daemon-child",
		"--pid-file /tmp/w.pid",
		"--log-file /tmp/w.log",
		"--source /backups",
		"--schedule 0 3 * * *",
		"--debounce 5s",
		"--config /etc/snapsweep.yaml",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("daemon child args missing %q: %v", want, args)
		}
	}

	if strings.Contains(args, "--daemon ") || strings.HasSuffix(args, "--daemon") {
		t.Error("daemon child args must not re-daemonize")
	}
}
