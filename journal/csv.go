package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{
	"run_id", "created", "position_id", "oracle_kind", "history_kind", "swap_count",
	"valuation_time", "end_time", "fixed_rate", "net_notional", "accrued",
	"estimated_apy", "estimated_future", "estimated_total",
}

// CSV appends runs to a single file, writing the header when the file is new.
type CSV struct {
	w    *csv.Writer
	file *os.File
}

func NewCSV(path string) (*CSV, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = file.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return &CSV{w: w, file: file}, nil
}

func (j *CSV) RecordRun(r Run) error {
	err := j.w.Write([]string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339Nano),
		r.PositionID,
		r.OracleKind,
		r.HistoryKind,
		strconv.Itoa(r.SwapCount),
		strconv.FormatInt(r.CurrentTime, 10),
		strconv.FormatInt(r.EndTime, 10),
		f(r.FixedRate),
		f(r.NetNotional),
		f(r.Accrued),
		f(r.EstimatedAPY),
		f(r.EstimatedFuture),
		f(r.EstimatedTotal),
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		_ = j.file.Close()
		return err
	}
	return j.file.Close()
}

// ReadCSV loads every run from a CSV journal in file order.
func ReadCSV(path string) ([]Run, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var out []Run
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		run, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, run)
	}
	return out, nil
}

func parseRow(rec []string) (Run, error) {
	var (
		r   Run
		err error
	)
	r.RunID = rec[0]
	if r.Created, err = time.Parse(time.RFC3339Nano, rec[1]); err != nil {
		return r, err
	}
	r.PositionID = rec[2]
	r.OracleKind = rec[3]
	r.HistoryKind = rec[4]
	if r.SwapCount, err = strconv.Atoi(rec[5]); err != nil {
		return r, err
	}
	if r.CurrentTime, err = strconv.ParseInt(rec[6], 10, 64); err != nil {
		return r, err
	}
	if r.EndTime, err = strconv.ParseInt(rec[7], 10, 64); err != nil {
		return r, err
	}

	floats := []*float64{&r.FixedRate, &r.NetNotional, &r.Accrued, &r.EstimatedAPY, &r.EstimatedFuture, &r.EstimatedTotal}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(rec[8+i], 64); err != nil {
			return r, err
		}
	}
	return r, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
