package browser

import (
	"errors"
	"reflect"
	"testing"
)

// recorder captures the command a launch would run
type recorder struct {
	name string
	args []string
	err  error
}

func (r *recorder) Start(name string, args ...string) error {
	r.name = name
	r.args = args
	return r.err
}

func TestOpenWith_Platforms(t *testing.T) {
	const live = "http://192.168.1.20:8081/live"

	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"linux", "xdg-open", []string{live}},
		{"freebsd", "xdg-open", []string{live}},
		{"darwin", "open", []string{live}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", live}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			rec := &recorder{}
			if err := OpenWith(live, rec, tt.goos); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if rec.name != tt.wantName {
				t.Errorf("expected command %q, got %q", tt.wantName, rec.name)
			}
			if !reflect.DeepEqual(rec.args, tt.wantArgs) {
				t.Errorf("expected args %v, got %v", tt.wantArgs, rec.args)
			}
		})
	}
}

func TestOpenWith_UnsupportedPlatform(t *testing.T) {
	rec := &recorder{}
	err := OpenWith("http://localhost:8081/live", rec, "plan9")

	if err == nil || err.Error() != "unsupported platform: plan9" {
		t.Errorf("expected unsupported platform error, got %v", err)
	}
	if rec.name != "" {
		t.Errorf("expected no command to run, got %q", rec.name)
	}
}

func TestOpenWith_RejectsNonHTTPTargets(t *testing.T) {
	for _, target := range []string{"", "file:///etc/passwd", "localhost:8081", "javascript:alert(1)", "http://"} {
		rec := &recorder{}
		if err := OpenWith(target, rec, "linux"); err == nil {
			t.Errorf("expected %q to be rejected", target)
		}
		if rec.name != "" {
			t.Errorf("expected no command for %q, got %q", target, rec.name)
		}
	}
}

func TestOpenWith_StartError(t *testing.T) {
	boom := errors.New("xdg-open: not found")
	rec := &recorder{err: boom}

	if err := OpenWith("https://scores.example.org/live", rec, "linux"); !errors.Is(err, boom) {
		t.Errorf("expected start error to propagate, got %v", err)
	}
}

func TestLaunchersAreNotMutated(t *testing.T) {
	rec := &recorder{}
	OpenWith("http://localhost/one", rec, "windows")
	OpenWith("http://localhost/two", rec, "windows")

	if got := launchers["windows"]; len(got) != 2 {
		t.Errorf("expected windows launcher untouched, got %v", got)
	}
	if rec.args[len(rec.args)-1] != "http://localhost/two" {
		t.Errorf("unexpected args %v", rec.args)
	}
}
