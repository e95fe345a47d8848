package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"price-loader/internal/storage"
)

// ExportOptions hold parameters for exporting an item's price history.
type ExportOptions struct {
	Item      string
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// Export renders an item's type-2 history as CSV and/or a PNG time series.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.Item == "" {
		return errors.New("--item must be provided")
	}
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	slices, err := store.ListItemHistory(ctx, opts.Item)
	if err != nil {
		return err
	}
	if len(slices) == 0 {
		a.Logger.Info().Str("item", opts.Item).Msg("no history found for item")
		return nil
	}

	downsampled := downsampleSlices(slices, opts.MaxPoints)
	a.Logger.Info().
		Str("item", opts.Item).
		Int("total", len(slices)).
		Int("exported", len(downsampled)).
		Msg("exporting history")

	if opts.CSVPath != "" {
		if err := writeHistoryCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeHistoryPNG(opts.PNGPath, opts.Item, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleSlices(slices []storage.HistorySlice, max int) []storage.HistorySlice {
	if max <= 0 || len(slices) <= max {
		return slices
	}

	result := make([]storage.HistorySlice, 0, max)
	step := float64(len(slices)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(slices) {
			idx = len(slices) - 1
		}
		result = append(result, slices[idx])
	}
	return result
}

func writeHistoryCSV(path string, slices []storage.HistorySlice) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"id", "item", "price", "currency", "valid_from", "valid_to", "is_current"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, slice := range slices {
		isCurrent := "false"
		if slice.IsCurrent {
			isCurrent = "true"
		}
		record := []string{
			slice.ID,
			slice.Item,
			slice.Price.String(),
			slice.Currency,
			slice.ValidFrom.UTC().Format(time.RFC3339),
			slice.ValidTo.UTC().Format(time.RFC3339),
			isCurrent,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeHistoryPNG(path, item string, slices []storage.HistorySlice) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	ordered := make([]storage.HistorySlice, len(slices))
	copy(ordered, slices)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ValidFrom.Before(ordered[j].ValidFrom)
	})

	x := make([]time.Time, len(ordered))
	prices := make([]float64, len(ordered))
	for i, slice := range ordered {
		x[i] = slice.ValidFrom
		prices[i] = slice.Price.InexactFloat64()
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Title:  item,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    item,
				XValues: x,
				YValues: prices,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
