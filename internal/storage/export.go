package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/chaser/internal/sim"
)

type ExportData struct {
	Run   RunMetadata  `json:"run"`
	Ticks []TickRecord `json:"ticks"`
}

func ExportJSON(w io.Writer, meta RunMetadata, ticks []sim.Tick) error {
	data := ExportData{
		Run:   meta,
		Ticks: make([]TickRecord, len(ticks)),
	}
	for i, t := range ticks {
		data.Ticks[i] = Record(t)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
