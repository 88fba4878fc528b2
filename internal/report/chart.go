package report

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"f1league-app/internal/model"
	"f1league-app/internal/standings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 960
	chartHeight = 480
)

// ProgressionChart renders the cumulative points of the top competitors as a
// PNG line chart. Series are expected in standings order.
func ProgressionChart(series []standings.Series, events []model.Event, top int) ([]byte, error) {
	if len(events) == 0 || len(series) == 0 {
		return renderPlaceholder("No events on the calendar")
	}
	if top > 0 && top < len(series) {
		series = series[:top]
	}

	maxPoints := 0
	for _, s := range series {
		maxPoints = max(maxPoints, s.Total())
	}
	if maxPoints == 0 {
		return renderPlaceholder("No results recorded yet")
	}

	xValues := make([]float64, len(events)+1)
	for i := range xValues {
		xValues[i] = float64(i)
	}
	ticks := eventTicks(events)

	lines := make([]chart.Series, 0, len(series))
	for _, s := range series {
		yValues := make([]float64, len(events)+1)
		for i, p := range s.Points {
			if i+1 < len(yValues) {
				yValues[i+1] = float64(p)
			}
		}
		color := colorFromHex(s.Color)
		lines = append(lines, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xValues,
			YValues: yValues,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
	}

	graph := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Event",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(events))},
		},
		YAxis: chart.YAxis{
			Name:  "Points",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxPoints)},
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render progression chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// eventTicks labels the x axis in event id order, the order series points
// are accumulated in. Tick 0 is the unlabelled origin.
func eventTicks(events []model.Event) []chart.Tick {
	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(a, b model.Event) int { return cmp.Compare(a.ID, b.ID) })
	ticks := make([]chart.Tick, 0, len(ordered)+1)
	ticks = append(ticks, chart.Tick{Value: 0, Label: ""})
	for i, e := range ordered {
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: shortName(e)})
	}
	return ticks
}

func renderPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Title:  msg,
		Width:  chartWidth / 2,
		Height: chartHeight / 2,
		XAxis:  chart.XAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("CCCCCC"), StrokeWidth: 1},
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render placeholder chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func shortName(e model.Event) string {
	name := strings.TrimSpace(e.Country)
	if name == "" {
		name = e.Name
	}
	if r := []rune(name); len(r) > 3 {
		name = string(r[:3])
	}
	return strings.ToUpper(name)
}

func colorFromHex(hex string) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return drawing.ColorFromHex("888888")
	}
	return drawing.ColorFromHex(hex)
}
