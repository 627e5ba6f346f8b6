package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lejarx/ncov-incubation/common"
	"github.com/lejarx/ncov-incubation/model"
	"github.com/lejarx/ncov-incubation/utils"
)

const dateLayout = "2006-01-02"

// StudyStart is the reference epoch: the earliest date any exposure is
// assumed possible. Missing exposure lower bounds default to it, and all
// window bounds are stored as day offsets from it.
var StudyStart = time.Date(2019, time.December, 1, 0, 0, 0, 0, time.UTC)

// Column names expected in the header row. Order in the file is free.
const (
	colSubject    = "UID"
	colEL         = "EL"
	colER         = "ER"
	colSL         = "SL"
	colSR         = "SR"
	colFeverSL    = "SL_fever"
	colFeverSR    = "SR_fever"
	colReportDate = "rep_date"
	colDest       = "country_dest"
	colReviewed   = "reviewed"
)

// Load reads and cleans a CSV file into a Dataset.
func Load(ctx context.Context, path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Parse(ctx, f)
}

// Parse reads and cleans CSV records into a Dataset. Rows that fail the
// substitution chain, lack dual-review confirmation, or violate the
// window-ordering invariants are dropped, never surfaced as errors.
func Parse(ctx context.Context, r io.Reader) (*model.Dataset, error) {
	logger := utils.GetLogger(ctx)

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colSubject, colEL, colER, colSL, colSR} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", common.ErrorMalformedRecord, required)
		}
	}

	ds := &model.Dataset{
		Name:  "full",
		Epoch: StudyStart,
	}

	var dropped int
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		obs, err := parseRow(record, cols)
		if err != nil {
			dropped++
			logger.Debug("dropping row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if !obs.Reviewed {
			dropped++
			logger.Debug("dropping row without dual-review confirmation",
				zap.Int("line", line), zap.String("subject", obs.SubjectID))
			continue
		}
		if !obs.Valid() {
			dropped++
			logger.Debug("dropping row violating window ordering",
				zap.Int("line", line), zap.String("obs", obs.DebugString()))
			continue
		}
		ds.Observations = append(ds.Observations, *obs)
	}

	logger.Info("dataset loaded",
		zap.Int("kept", ds.Size()), zap.Int("dropped", dropped))

	if ds.IsEmpty() {
		return nil, common.ErrorEmptyDataset
	}
	return ds, nil
}

// parseRow applies the default-substitution chain in its fixed order:
//  1. missing EL -> study start
//  2. missing SR -> rep_date; if that is missing too the row is dropped
//  3. missing ER -> SR
//  4. missing SL -> SR
//  5. fever rows with missing fever bounds -> general onset bounds
func parseRow(record []string, cols map[string]int) (*model.Observation, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	el, elOK := parseDate(field(colEL))
	er, erOK := parseDate(field(colER))
	sl, slOK := parseDate(field(colSL))
	sr, srOK := parseDate(field(colSR))
	rep, repOK := parseDate(field(colReportDate))

	if !elOK {
		el = StudyStart
	}
	if !srOK {
		if !repOK {
			return nil, common.ErrorMissingReportDate
		}
		sr = rep
	}
	if !erOK {
		er = sr
	}
	if !slOK {
		sl = sr
	}

	obs := &model.Observation{
		SubjectID:   field(colSubject),
		EL:          utils.DaysSince(StudyStart, el),
		ER:          utils.DaysSince(StudyStart, er),
		SL:          utils.DaysSince(StudyStart, sl),
		SR:          utils.DaysSince(StudyStart, sr),
		Destination: field(colDest),
		Reviewed:    parseBool(field(colReviewed)),
	}

	fsl, fslOK := parseDate(field(colFeverSL))
	fsr, fsrOK := parseDate(field(colFeverSR))
	if fslOK || fsrOK {
		obs.Fever = true
		if !fslOK {
			fsl = sl
		}
		if !fsrOK {
			fsr = sr
		}
		obs.FeverSL = utils.DaysSince(StudyStart, fsl)
		obs.FeverSR = utils.DaysSince(StudyStart, fsr)
	}

	return obs, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" || s == "NA" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
