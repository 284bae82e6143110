package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/market-intel/internal/model"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune            // default ','
	HasHeader  bool            // if true, first row is skipped but sent to HeaderCh
	HeaderCh   chan<- []string // optional: receives the header row
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads a CSV source and sends rows to a channel. Ads exports are
// UTF-8 with a BOM, which is stripped before parsing.
// Caller must consume the returned row channel. Errors are sent on the error
// channel. Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		bom := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		reader := csv.NewReader(transform.NewReader(r, bom))

		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			if first && opts.HasHeader {
				first = false
				if opts.HeaderCh != nil {
					select {
					case opts.HeaderCh <- record:
					case <-ctx.Done():
						errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled sending header")
						return
					}
				}
				continue
			}
			first = false

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// cleanNumeric parses one numeric cell from an ads export. Exports use '--'
// and '< 10' for suppressed cells, '%' suffixes for rates, and the Turkish
// convention of comma as decimal separator with dot as thousands separator.
// A percentage cell keeps percent units: "10,50%" parses to 10.5.
// Unparseable values collapse to 0.
func cleanNumeric(raw string) float64 {
	v := strings.TrimSpace(raw)
	if v == "" || v == "--" || v == "< 10" {
		return 0
	}

	if strings.Contains(v, "%") {
		v = strings.TrimSpace(strings.ReplaceAll(v, "%", ""))
		v = strings.ReplaceAll(v, ",", ".")
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	}

	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// performanceColumns maps export header names (Turkish and English) to the
// canonical field keys used below.
var performanceColumns = map[string]string{
	"ilçe":                   "district",
	"bölge":                  "district",
	"konum":                  "district",
	"district":               "district",
	"maliyet":                "cost",
	"cost":                   "cost",
	"dönüşümler":             "conversions",
	"conversions":            "conversions",
	"tıklamalar":             "clicks",
	"tıklama":                "clicks",
	"clicks":                 "clicks",
	"gösterimler":            "impressions",
	"gösterim":               "impressions",
	"impressions":            "impressions",
	"dön. oranı":             "cvr",
	"dönüşüm oranı":          "cvr",
	"cvr":                    "cvr",
	"maliyet/dönüşüm":        "cpa",
	"dönüşüm başına maliyet": "cpa",
	"cpa":                    "cpa",
}

// LoadDistrictPerformance parses a per-district campaign performance export.
// CVR and CPA are derived from the volume columns when the export omits them:
// CVR = conversions/clicks as a percentage, CPA = cost/conversions. Zero
// denominators leave the derived metric at 0.
func LoadDistrictPerformance(ctx context.Context, r io.Reader) ([]model.DistrictPerformance, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, r, CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var header []string
	select {
	case header = <-headerCh:
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
		return nil, eris.New("fetcher: performance csv is empty")
	}

	cols := make(map[string]int)
	for i, h := range header {
		if key, ok := performanceColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, seen := cols[key]; !seen {
				cols[key] = i
			}
		}
	}
	if _, ok := cols["district"]; !ok {
		return nil, eris.New("fetcher: performance csv has no district column")
	}

	cell := func(row []string, key string) (string, bool) {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	var out []model.DistrictPerformance
	for row := range rowCh {
		name, _ := cell(row, "district")
		if strings.TrimSpace(name) == "" {
			continue
		}

		p := model.DistrictPerformance{District: strings.TrimSpace(name)}
		if v, ok := cell(row, "cost"); ok {
			p.Cost = cleanNumeric(v)
		}
		if v, ok := cell(row, "clicks"); ok {
			p.Clicks = cleanNumeric(v)
		}
		if v, ok := cell(row, "impressions"); ok {
			p.Impressions = cleanNumeric(v)
		}
		if v, ok := cell(row, "conversions"); ok {
			p.Conversions = cleanNumeric(v)
		}
		if v, ok := cell(row, "cvr"); ok {
			p.CVR = cleanNumeric(v)
		} else if p.Clicks > 0 {
			p.CVR = p.Conversions / p.Clicks * 100
		}
		if v, ok := cell(row, "cpa"); ok {
			p.CPA = cleanNumeric(v)
		} else if p.Conversions > 0 {
			p.CPA = p.Cost / p.Conversions
		}

		out = append(out, p)
	}

	if err := <-errCh; err != nil {
		return nil, err
	}
	return out, nil
}

// businessColumns maps business CSV headers to canonical keys.
var businessColumns = map[string]string{
	"id":           "id",
	"name":         "name",
	"business":     "name",
	"latitude":     "latitude",
	"lat":          "latitude",
	"longitude":    "longitude",
	"lng":          "longitude",
	"lon":          "longitude",
	"rating":       "rating",
	"review_count": "review_count",
	"reviews":      "review_count",
	"website":      "website",
	"url":          "website",
	"phone":        "phone",
	"district":     "district",
}

// LoadBusinesses parses a business snapshot CSV. Name, latitude, and
// longitude are required per row; rating and review_count default to the
// neutral 0 when absent so downstream scoring treats them as unknown.
func LoadBusinesses(ctx context.Context, r io.Reader) ([]model.Business, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, r, CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var header []string
	select {
	case header = <-headerCh:
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
		return nil, eris.New("fetcher: business csv is empty")
	}

	cols := make(map[string]int)
	for i, h := range header {
		if key, ok := businessColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, seen := cols[key]; !seen {
				cols[key] = i
			}
		}
	}
	for _, required := range []string{"name", "latitude", "longitude"} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("fetcher: business csv missing %s column", required)
		}
	}

	cell := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []model.Business
	for row := range rowCh {
		name := strings.TrimSpace(cell(row, "name"))
		if name == "" {
			continue
		}

		b := model.Business{
			ID:          strings.TrimSpace(cell(row, "id")),
			Name:        name,
			Latitude:    cleanNumeric(cell(row, "latitude")),
			Longitude:   cleanNumeric(cell(row, "longitude")),
			Rating:      cleanNumeric(cell(row, "rating")),
			ReviewCount: int(cleanNumeric(cell(row, "review_count"))),
			Website:     strings.TrimSpace(cell(row, "website")),
			Phone:       strings.TrimSpace(cell(row, "phone")),
			District:    strings.TrimSpace(cell(row, "district")),
		}
		out = append(out, b)
	}

	if err := <-errCh; err != nil {
		return nil, err
	}
	return out, nil
}
