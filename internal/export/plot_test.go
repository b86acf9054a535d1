package export

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
	"github.com/san-kum/chaser/internal/sim"
)

func approachTicks() []sim.Tick {
	ticks := make([]sim.Tick, 20)
	for i := range ticks {
		x := 4 + float64(i)*0.1
		d := 5.5 - x
		mode := control.Approaching
		if d < 1 {
			mode = control.Holding
		}
		ticks[i] = sim.Tick{
			Seq:     uint64(i + 1),
			Elapsed: time.Duration(i) * 50 * time.Millisecond,
			Agent:   pose.Pose{X: x, Y: 4},
			Target:  pose.Pose{X: 5.5, Y: 4},
			Evaluation: control.Evaluation{
				Distance: d,
				Mode:     mode,
				Command:  control.Command{Linear: d},
			},
		}
	}
	return ticks
}

func TestPlotsSave(t *testing.T) {
	dir := t.TempDir()
	ticks := approachTicks()

	traj, err := Trajectory(ticks, "trajectory")
	if err != nil {
		t.Fatalf("trajectory: %v", err)
	}
	dist, err := Distance(ticks, 1, "distance")
	if err != nil {
		t.Fatalf("distance: %v", err)
	}
	cmds, err := Commands(ticks, "commands")
	if err != nil {
		t.Fatalf("commands: %v", err)
	}

	files := map[string]error{
		"traj.png": Save(traj, filepath.Join(dir, "traj.png")),
		"dist.svg": Save(dist, filepath.Join(dir, "dist.svg")),
		"cmds.png": Save(cmds, filepath.Join(dir, "cmds.png")),
	}
	for name, err := range files {
		if err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestTrajectoryEqualAspect(t *testing.T) {
	p, err := Trajectory(approachTicks(), "")
	if err != nil {
		t.Fatal(err)
	}
	dx := p.X.Max - p.X.Min
	dy := p.Y.Max - p.Y.Min
	if math.Abs(dx-dy) > 1e-9 {
		t.Errorf("expected equal spans, got %f and %f", dx, dy)
	}
}

func TestPlotsRejectEmpty(t *testing.T) {
	if _, err := Trajectory(nil, ""); !errors.Is(err, ErrNoTicks) {
		t.Errorf("expected ErrNoTicks, got %v", err)
	}
	if _, err := Distance(nil, 1, ""); !errors.Is(err, ErrNoTicks) {
		t.Errorf("expected ErrNoTicks, got %v", err)
	}
	if _, err := Commands(nil, ""); !errors.Is(err, ErrNoTicks) {
		t.Errorf("expected ErrNoTicks, got %v", err)
	}
}
