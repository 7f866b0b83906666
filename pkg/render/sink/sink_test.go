package sink

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/umlsvg/pkg/diagram"
	"github.com/matzehuels/umlsvg/pkg/label"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

func testScene(t *testing.T, mode label.Mode) *scene.Scene {
	t.Helper()
	d := &diagram.Diagram{
		CX: 400, CY: 200,
		Nodes: []diagram.Box{
			{ID: "animal", X: 0, Y: 0, Width: 100, Height: 50, TextLines: []diagram.LabelLine{
				{Text: "Animal", Type: "title", Style: "bold"},
				{Text: "+name & <id>", Align: "left"},
			}},
			{ID: "dog", X: 200, Y: 0, Width: 100, Height: 50, Color: "#fdfaf7"},
		},
		Links: []diagram.Link{
			{Source: "dog", Target: "animal", Type: "generalization"},
			{Source: "animal", Target: "dog", TextStartTop: "owner", TextEndBtm: "0..*", Color: "steelblue"},
			{Source: "animal", Target: "cat"},
		},
	}
	st := scene.DefaultStyle()
	st.LabelMode = mode
	return scene.Build(diagram.Resolve(d), st)
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testScene(t, label.ModeEdge)))

	wants := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`width="400" height="200" viewBox="0 0 400 200"`,
		`refX="5" refY="0" orient="auto"`,
		`<path d="M 0,-5 L 10 ,0 L 0,5" fill="black"/>`,
		`<line class="link" data-index="0" x1="250" y1="25" x2="50" y2="25" stroke="black" stroke-width="3"/>`,
		`<line class="generalization" data-index="0" x1="250" y1="25" x2="110" y2="25"`,
		`stroke="steelblue" stroke-width="2"/>`,
		`dy=".35em" text-anchor="middle" font-family="Arial, sans-serif" font-size="10" fill="black" font-weight="bold">Animal</text>`,
		`+name &amp; &lt;id&gt;`,
		`data-slot="start-top" data-edge="right" x="115" y="25" dy="-1em" text-anchor="start"`,
		`font-size="12" fill="black">owner</text>`,
		`<g class="box" id="box-dog">`,
		`fill="#fdfaf7"`,
	}
	for _, want := range wants {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}

	if strings.Contains(svg, "cat") {
		t.Error("dangling link was drawn")
	}
	if got := strings.Count(svg, `class="label"`); got != 8 {
		t.Errorf("label count = %d, want 8 (empty slots included)", got)
	}
	if !strings.Contains(svg, `marker-end="url(#`+MarkerID(testScene(t, label.ModeEdge))+`)"`) {
		t.Error("generalization does not reference the marker")
	}
}

func TestRenderSVGOrder(t *testing.T) {
	svg := string(RenderSVG(testScene(t, label.ModeEdge)))
	link := strings.Index(svg, `class="link"`)
	box := strings.Index(svg, `class="box"`)
	lbl := strings.Index(svg, `class="label"`)
	if !(link < box && box < lbl) {
		t.Errorf("draw order links=%d boxes=%d labels=%d, want links < boxes < labels", link, box, lbl)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(testScene(t, label.ModeEdge), WithoutXMLHeader(), WithMarkerID("tip"), WithBackground("white")))
	if strings.HasPrefix(svg, "<?xml") {
		t.Error("XML header present")
	}
	if !strings.Contains(svg, `<marker id="tip"`) || !strings.Contains(svg, `url(#tip)`) {
		t.Error("marker id not applied")
	}
	if !strings.Contains(svg, `<rect width="100%" height="100%" fill="white"/>`) {
		t.Error("background missing")
	}
}

func TestRenderSVGRotated(t *testing.T) {
	d := &diagram.Diagram{
		Nodes: []diagram.Box{
			{ID: "a", X: 0, Y: 0, Width: 100, Height: 50},
			{ID: "b", X: 0, Y: 200, Width: 100, Height: 50},
		},
		Links: []diagram.Link{{Source: "a", Target: "b", TextStart: "1", TextEnd: "*"}},
	}
	st := scene.DefaultStyle()
	st.LabelMode = label.ModeRotate
	svg := string(RenderSVG(scene.Build(diagram.Resolve(d), st)))

	if !strings.Contains(svg, `transform="rotate(90 50 60)"`) {
		t.Errorf("rotated start label missing:\n%s", svg)
	}
	if got := strings.Count(svg, `class="label"`); got != 2 {
		t.Errorf("label count = %d, want 2", got)
	}
}

func TestMarkerIDStable(t *testing.T) {
	a := MarkerID(testScene(t, label.ModeEdge))
	b := MarkerID(testScene(t, label.ModeEdge))
	if a != b {
		t.Errorf("MarkerID not deterministic: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "arrowhead-") || len(a) != len("arrowhead-")+8 {
		t.Errorf("MarkerID = %q", a)
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		-0.001:   "0",
		12.5:     "12.5",
		1.0 / 3:  "0.33",
		100:      "100",
		-7.256:   "-7.26",
		2.999999: "3",
	}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testScene(t, label.ModeEdge), WithJSONDiagnostics())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Width != 400 || out.Height != 200 || out.LabelMode != "edge" {
		t.Errorf("header = %v x %v %q", out.Width, out.Height, out.LabelMode)
	}
	if len(out.Boxes) != 2 || len(out.Links) != 2 {
		t.Fatalf("boxes = %d, links = %d", len(out.Boxes), len(out.Links))
	}
	gen := out.Links[0]
	if !gen.Generalization || gen.Arrow == nil || gen.Arrow.X2 != 110 {
		t.Errorf("generalization = %+v", gen)
	}
	if gen.SourceEdge != "left" || gen.TargetEdge != "right" {
		t.Errorf("edges = %s, %s", gen.SourceEdge, gen.TargetEdge)
	}
	if out.Links[1].Arrow != nil {
		t.Error("plain link has an arrow")
	}
	if out.Skipped != 1 || len(out.Diagnostics) != 1 || out.Diagnostics[0].ID != "cat" {
		t.Errorf("skipped = %d, diagnostics = %+v", out.Skipped, out.Diagnostics)
	}
}

func TestRenderJSONVisibleLabelsOnly(t *testing.T) {
	data, err := RenderJSON(testScene(t, label.ModeEdge), WithJSONVisibleLabelsOnly(), WithJSONIndent())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if n := len(out.Links[0].Labels); n != 0 {
		t.Errorf("generalization labels = %d, want 0", n)
	}
	if n := len(out.Links[1].Labels); n != 2 {
		t.Errorf("association labels = %d, want 2", n)
	}
	if !bytes.Contains(data, []byte("\n  ")) {
		t.Error("output not indented")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testScene(t, label.ModeEdge))

	wants := []string{
		"layout=neato;",
		`fontname="Arial"`,
		`"animal" [pos="50,175!", width=1.39, height=0.69, fillcolor="white", label="Animal\n+name & <id>"];`,
		`"dog" [pos="250,175!"`,
		`label="dog"`,
		`"dog" -> "animal" [color="black", arrowhead=onormal];`,
		`"animal" -> "dog" [color="steelblue", taillabel="owner", headlabel="0..*"];`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "cat") {
		t.Error("dangling link in DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox: got %s", got)
	}
}

func TestRasterize(t *testing.T) {
	img, err := Rasterize(testScene(t, label.ModeEdge), 1)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("bounds = %v, want 400x200", b)
	}

	// Far corner is background.
	if r, g, b, _ := img.At(399, 199).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("background = %d,%d,%d, want white", r>>8, g>>8, b>>8)
	}
	// Box border is steelblue-ish.
	if r, _, b, _ := img.At(200, 40).RGBA(); !(b>>8 > r>>8) {
		t.Errorf("box border at (200,40) = r %d b %d, want blue dominant", r>>8, b>>8)
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(t.Context(), testScene(t, label.ModeRotate), WithScale(0.5))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("bounds = %v, want 200x100", b)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
	}{
		{"black", 0, 0, 0},
		{"SteelBlue", 70, 130, 180},
		{"#fdfaf7", 253, 250, 247},
		{"#f00", 255, 0, 0},
		{"nonsense", 1, 2, 3},
	}
	for _, tt := range tests {
		c := parseColor(tt.in, color.RGBA{1, 2, 3, 255})
		r, g, b, _ := c.RGBA()
		if uint8(r>>8) != tt.r || uint8(g>>8) != tt.g || uint8(b>>8) != tt.b {
			t.Errorf("parseColor(%q) = %d,%d,%d, want %d,%d,%d", tt.in, r>>8, g>>8, b>>8, tt.r, tt.g, tt.b)
		}
	}
}
