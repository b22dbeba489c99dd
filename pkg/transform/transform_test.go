package transform

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/williamcotton/gramgraph/pkg/dsl"
	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/palette"
	"github.com/williamcotton/gramgraph/pkg/resolve"
	"github.com/williamcotton/gramgraph/pkg/table"
)

const salesCSV = `quarter,type,amount
Q1,A,10
Q1,B,20
Q2,A,15
Q2,B,5
`

func build(t *testing.T, src, csv string) (*RenderData, error) {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	spec, err := dsl.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rs, err := resolve.Resolve(spec, tbl.Header())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return Transform(rs, tbl)
}

func mustBuild(t *testing.T, src, csv string) *RenderData {
	t.Helper()
	data, err := build(t, src, csv)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	return data
}

func TestTransformStackScenario(t *testing.T) {
	data := mustBuild(t, `aes(x: quarter, y: amount, color: type) | bar(position: "stack")`, salesCSV)

	if len(data.Panels) != 1 || data.Rows != 1 || data.Cols != 1 {
		t.Fatalf("got %d panels in %dx%d grid, want a single panel", len(data.Panels), data.Rows, data.Cols)
	}
	if data.X.Kind != Categorical || !reflect.DeepEqual(data.X.Labels, []string{"Q1", "Q2"}) {
		t.Errorf("X = %+v", data.X)
	}
	if data.Y.Kind != Continuous {
		t.Errorf("Y kind = %v, want continuous", data.Y.Kind)
	}

	groups := data.Panels[0].Series[0]
	if len(groups) != 2 || groups[0].Key.Color != "A" || groups[1].Key.Color != "B" {
		t.Fatalf("groups = %+v", groups)
	}

	want := map[string][2]float64{
		"A/Q1": {0, 10}, "B/Q1": {10, 30},
		"A/Q2": {0, 15}, "B/Q2": {15, 20},
	}
	for _, g := range groups {
		for _, s := range g.Samples {
			k := g.Key.Color + "/" + s.XLabel
			got := [2]float64{s.YStart, s.YEnd}
			if got != want[k] {
				t.Errorf("%s: span = %v, want %v", k, got, want[k])
			}
		}
	}

	legend := data.Palette.Legend()
	if len(legend) != 2 || legend[0].Value != "A" || legend[1].Value != "B" {
		t.Errorf("legend = %+v", legend)
	}
}

func TestTransformStackProperty(t *testing.T) {
	csv := `x,g,v
a,p,3
a,q,-2
a,r,4
a,s,-1
b,p,2
b,q,0
b,r,5
`
	data := mustBuild(t, `aes(x: x, y: v, color: g) | bar(position: stack)`, csv)

	type span struct{ start, end float64 }
	byX := make(map[string][]span)
	sums := make(map[string][2]float64)
	for _, g := range data.Panels[0].Series[0] {
		for _, s := range g.Samples {
			byX[s.XLabel] = append(byX[s.XLabel], span{s.YStart, s.YEnd})
			if s.YEnd-s.YStart != s.Y {
				t.Errorf("%s/%s: height %v, want %v", g.Key.Color, s.XLabel, s.YEnd-s.YStart, s.Y)
			}
			acc := sums[s.XLabel]
			if s.Y >= 0 {
				acc[0] += s.Y
			} else {
				acc[1] += s.Y
			}
			sums[s.XLabel] = acc
		}
	}

	for x, spans := range byX {
		lo, hi := 0.0, 0.0
		for _, sp := range spans {
			lo = math.Min(lo, math.Min(sp.start, sp.end))
			hi = math.Max(hi, math.Max(sp.start, sp.end))
		}
		if hi != sums[x][0] || lo != sums[x][1] {
			t.Errorf("x=%s: stack spans [%v, %v], want [%v, %v]", x, lo, hi, sums[x][1], sums[x][0])
		}
	}

	// Negative values stack downward from zero in group order.
	q := data.Panels[0].Series[0][1].Samples[0]
	s := data.Panels[0].Series[0][3].Samples[0]
	if q.YStart != 0 || q.YEnd != -2 || s.YStart != -2 || s.YEnd != -3 {
		t.Errorf("negative stack: q=%v..%v s=%v..%v", q.YStart, q.YEnd, s.YStart, s.YEnd)
	}
}

func TestTransformDodge(t *testing.T) {
	csv := `x,g,v
a,p,1
a,q,2
a,r,3
b,p,4
b,r,5
`
	data := mustBuild(t, `aes(x: x, y: v, color: g) | bar(position: "dodge", width: 0.6)`, csv)

	type bar struct{ lo, hi float64 }
	byX := make(map[string][]bar)
	for _, g := range data.Panels[0].Series[0] {
		for _, s := range g.Samples {
			if s.YStart != 0 || s.YEnd != s.Y {
				t.Errorf("dodged bar should keep identity heights, got %v..%v", s.YStart, s.YEnd)
			}
			byX[s.XLabel] = append(byX[s.XLabel], bar{s.Offset - s.Width/2, s.Offset + s.Width/2})
		}
	}

	const eps = 1e-9
	for x, bars := range byX {
		lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
		for i, b := range bars {
			lo, hi = math.Min(lo, b.lo), math.Max(hi, b.hi)
			sum += b.hi - b.lo
			for _, o := range bars[i+1:] {
				if b.lo < o.hi-eps && o.lo < b.hi-eps {
					t.Errorf("x=%s: bars %v and %v overlap", x, b, o)
				}
			}
		}
		if math.Abs(lo+0.3) > eps || math.Abs(hi-0.3) > eps {
			t.Errorf("x=%s: bars cover [%v, %v], want symmetric [-0.3, 0.3]", x, lo, hi)
		}
		if math.Abs(sum-0.6) > eps {
			t.Errorf("x=%s: total width %v, want 0.6", x, sum)
		}
	}
	if len(byX["a"]) != 3 || len(byX["b"]) != 2 {
		t.Errorf("slots: a=%d b=%d, want 3 and 2", len(byX["a"]), len(byX["b"]))
	}
}

func TestTransformIdentityBars(t *testing.T) {
	data := mustBuild(t, `aes(x: quarter, y: amount) | bar()`, salesCSV)
	groups := data.Panels[0].Series[0]
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if len(groups[0].Samples) != 4 {
		t.Fatalf("got %d samples, want one per row", len(groups[0].Samples))
	}
	for i, s := range groups[0].Samples {
		if s.Row != i || s.YStart != 0 || s.YEnd != s.Y || s.Width != palette.DefaultBarWidth || s.Offset != 0 {
			t.Errorf("sample %d = %+v", i, s)
		}
	}
	if got := data.Palette.Legend(); len(got) != 0 {
		t.Errorf("legend should be empty without grouping channels, got %+v", got)
	}
}

func TestTransformFacetGrid(t *testing.T) {
	csv := "x,y,f\n1,1,d\n2,2,b\n3,3,d\n4,4,a\n5,5,c\n6,6,e\n"
	tests := []struct {
		src        string
		cols, rows int
	}{
		{`aes(x: x, y: y) | point() | facet_wrap(by: f)`, 3, 2},
		{`aes(x: x, y: y) | point() | facet_wrap(by: f, ncol: 2)`, 2, 3},
		{`aes(x: x, y: y) | point() | facet_wrap(by: f, ncol: 9)`, 5, 1},
	}
	for _, tt := range tests {
		data := mustBuild(t, tt.src, csv)
		if data.Cols != tt.cols || data.Rows != tt.rows {
			t.Errorf("%s: grid %dx%d, want %dx%d", tt.src, data.Cols, data.Rows, tt.cols, tt.rows)
		}
		var keys []string
		for i, p := range data.Panels {
			keys = append(keys, p.Key)
			if p.Row != i/data.Cols || p.Col != i%data.Cols {
				t.Errorf("panel %d at (%d,%d)", i, p.Row, p.Col)
			}
		}
		if !reflect.DeepEqual(keys, []string{"d", "b", "a", "c", "e"}) {
			t.Errorf("panel order = %v, want first occurrence", keys)
		}
		if data.Panels[0].Title != "f = d" {
			t.Errorf("title = %q", data.Panels[0].Title)
		}
		if n := len(data.Panels[0].Series[0][0].Samples); n != 2 {
			t.Errorf("panel d has %d samples, want 2", n)
		}
	}
}

func TestTransformPaletteGlobalAcrossPanels(t *testing.T) {
	csv := "x,y,g,f\n1,1,b,one\n2,2,a,two\n3,3,a,one\n"
	data := mustBuild(t, `aes(x: x, y: y, color: g) | line() | facet_wrap(by: f)`, csv)

	// Panel "two" only sees "a", but its index comes from the whole table.
	if i, _ := data.Palette.Index(palette.ChannelColor, "a"); i != 1 {
		t.Errorf("index of a = %d, want 1", i)
	}
	two := data.Panels[1].Series[0]
	if len(two) != 1 || two[0].Key.Color != "a" || two[0].Group != 0 {
		t.Errorf("panel two groups = %+v", two)
	}
}

func TestTransformLegendEligibility(t *testing.T) {
	csv := "x,y,g,h\n1,1,a,u\n2,2,b,v\n"
	data := mustBuild(t, `aes(x: x, y: y, color: g, shape: h) | line(color: "red")`, csv)
	if got := data.Palette.Legend(); len(got) != 0 {
		t.Errorf("overridden color and line shape should not produce a legend, got %+v", got)
	}
	// The overridden color still splits groups.
	if n := len(data.Panels[0].Series[0]); n != 2 {
		t.Errorf("got %d groups, want 2", n)
	}

	data = mustBuild(t, `aes(x: x, y: y, color: g) | line(color: "red") | point()`, csv)
	if got := data.Palette.Legend(); len(got) != 2 {
		t.Errorf("point layer maps color, want 2 legend entries, got %+v", got)
	}
}

func TestTransformUndrawnChannelsDoNotGroup(t *testing.T) {
	csv := "x,y,g\na,1,u\na,2,v\nb,3,u\n"
	data := mustBuild(t, `aes(x: x, y: y, size: g, shape: g) | bar(position: "dodge")`, csv)
	bars := data.Panels[0].Series[0]
	if len(bars) != 1 {
		t.Fatalf("bars draw no size or shape, got %d groups, want 1", len(bars))
	}
	if bars[0].Key != (GroupKey{}) {
		t.Errorf("bar key = %+v, want empty", bars[0].Key)
	}
	for _, s := range bars[0].Samples {
		if s.Offset != 0 {
			t.Errorf("a single group should not be dodged: %+v", s)
		}
	}

	data = mustBuild(t, `aes(x: x, y: y, size: g, shape: g) | line()`, csv)
	lines := data.Panels[0].Series[0]
	if len(lines) != 2 || lines[0].Key != (GroupKey{Size: "u"}) {
		t.Errorf("line groups = %+v, want split by size only", lines)
	}
}

func TestTransformCategoricalOrder(t *testing.T) {
	csv := "a,b,v,w\nz,m,1,2\ny,z,2,3\nz,x,3,4\n"
	data := mustBuild(t, `point(x: a, y: v) | point(x: b, y: w)`, csv)
	if want := []string{"z", "y", "m", "x"}; !reflect.DeepEqual(data.X.Labels, want) {
		t.Errorf("labels = %v, want %v", data.X.Labels, want)
	}
	s := data.Panels[0].Series[1][0].Samples[1]
	if s.XLabel != "z" || s.X != 0 {
		t.Errorf("second layer sample = %+v, want global index 0 for z", s)
	}
}

func TestTransformErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		csv     string
		mention string
	}{
		{"empty table", `aes(x: a, y: b) | line()`, "a,b\n", "no rows"},
		{"bad numeric cell", `aes(x: a, y: b) | line()`, "a,b\n1,2\n2,oops\n", `row 2: column "b"`},
		{"non-numeric bar height", `aes(x: a, y: b) | bar()`, "a,b\nx,tall\n", "must be numeric"},
		{"mixed axis kinds", `point(x: a, y: n) | point(x: c, y: n)`, "a,c,n\n1,k,2\n", "x axis mixes"},
		{"infinite value", `aes(x: a, y: b) | point()`, "a,b\n1,2\n2,Inf\n", `"Inf"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.src, tt.csv)
			if err == nil {
				t.Fatal("expected error")
			}
			if !gerrors.Is(err, gerrors.ErrCodeData) {
				t.Errorf("code = %v, want DATA_ERROR", gerrors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Errorf("error %q should mention %s", err.Error(), tt.mention)
			}
		})
	}
}

func TestTransformTableMismatch(t *testing.T) {
	spec, err := dsl.Parse(`aes(x: a, y: b, color: g) | line()`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rs, err := resolve.Resolve(spec, []string{"a", "b", "g"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	tbl, err := table.ReadCSV(strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	_, err = Transform(rs, tbl)
	if !gerrors.Is(err, gerrors.ErrCodeSchema) || !strings.Contains(err.Error(), `"g"`) {
		t.Errorf("error = %v, want SCHEMA_ERROR naming g", err)
	}
}
