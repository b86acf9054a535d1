package storage

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
	"github.com/san-kum/chaser/internal/sim"
)

// TickRecord is the flat, serialisable form of a sim.Tick.
type TickRecord struct {
	Seq          uint64    `json:"seq"`
	Time         float64   `json:"time"`
	Agent        pose.Pose `json:"agent"`
	Target       pose.Pose `json:"target"`
	Distance     float64   `json:"distance"`
	Bearing      float64   `json:"bearing"`
	HeadingError float64   `json:"heading_error"`
	Mode         string    `json:"mode"`
	Linear       float64   `json:"linear"`
	Angular      float64   `json:"angular"`
	SendErr      string    `json:"send_err,omitempty"`
}

func Record(t sim.Tick) TickRecord {
	r := TickRecord{
		Seq:          t.Seq,
		Time:         t.Time(),
		Agent:        t.Agent,
		Target:       t.Target,
		Distance:     t.Distance,
		Bearing:      t.Bearing,
		HeadingError: t.HeadingError,
		Mode:         t.Mode.String(),
		Linear:       t.Command.Linear,
		Angular:      t.Command.Angular,
	}
	if t.SendErr != nil {
		r.SendErr = t.SendErr.Error()
	}
	return r
}

func (r TickRecord) Tick() (sim.Tick, error) {
	mode, err := control.ParseMode(r.Mode)
	if err != nil {
		return sim.Tick{}, err
	}
	t := sim.Tick{
		Seq:     r.Seq,
		Elapsed: secondsToDuration(r.Time),
		Agent:   r.Agent,
		Target:  r.Target,
		Evaluation: control.Evaluation{
			Distance:     r.Distance,
			Bearing:      r.Bearing,
			HeadingError: r.HeadingError,
			Mode:         mode,
			Command:      control.Command{Linear: r.Linear, Angular: r.Angular},
		},
	}
	if r.SendErr != "" {
		t.SendErr = errors.New(r.SendErr)
	}
	return t, nil
}

var csvHeader = []string{
	"seq", "time",
	"agent_x", "agent_y", "agent_theta",
	"target_x", "target_y", "target_theta",
	"distance", "bearing", "heading_error",
	"mode", "linear", "angular", "send_err",
}

func (r TickRecord) row() []string {
	return []string{
		strconv.FormatUint(r.Seq, 10), ftoa(r.Time),
		ftoa(r.Agent.X), ftoa(r.Agent.Y), ftoa(r.Agent.Theta),
		ftoa(r.Target.X), ftoa(r.Target.Y), ftoa(r.Target.Theta),
		ftoa(r.Distance), ftoa(r.Bearing), ftoa(r.HeadingError),
		r.Mode, ftoa(r.Linear), ftoa(r.Angular), r.SendErr,
	}
}

func parseRow(row []string) (TickRecord, error) {
	if len(row) != len(csvHeader) {
		return TickRecord{}, fmt.Errorf("storage: expected %d columns, got %d", len(csvHeader), len(row))
	}
	seq, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return TickRecord{}, fmt.Errorf("storage: seq: %w", err)
	}

	idx := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 13}
	vals := make([]float64, len(idx))
	for i, col := range idx {
		vals[i], err = strconv.ParseFloat(row[col], 64)
		if err != nil {
			return TickRecord{}, fmt.Errorf("storage: %s: %w", csvHeader[col], err)
		}
	}

	return TickRecord{
		Seq:          seq,
		Time:         vals[0],
		Agent:        pose.Pose{X: vals[1], Y: vals[2], Theta: vals[3]},
		Target:       pose.Pose{X: vals[4], Y: vals[5], Theta: vals[6]},
		Distance:     vals[7],
		Bearing:      vals[8],
		HeadingError: vals[9],
		Mode:         row[11],
		Linear:       vals[10],
		Angular:      vals[11],
		SendErr:      row[14],
	}, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
