package latency

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes the aggregated averages to path as
// roomCount,clientCount,latency rows with a header.
func (r *Recorder) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"roomCount", "clientCount", "latency"}); err != nil {
		return err
	}

	for _, avg := range r.ExportAverages() {
		row := []string{
			strconv.Itoa(avg.RoomCount),
			strconv.Itoa(avg.ClientCount),
			strconv.FormatFloat(avg.MeanLatencyMs, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
