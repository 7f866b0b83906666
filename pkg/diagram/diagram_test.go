package diagram

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/geom"
)

const sampleJSON = `{
  "cx": 600, "cy": 400,
  "nodes": [
    {"id": "a", "x": 0, "y": 0, "width": 100, "height": 50,
     "textLines": [{"text": "Order", "type": "title", "style": "bold"}, {}, {"text": "+id: int", "align": "start"}]},
    {"id": 2, "x": 200, "y": 0, "width": 100, "height": 50}
  ],
  "links": [
    {"source": "a", "target": "2", "textStartTop": "items", "textEndBtmHidden": 1, "textEndTopXPos": 4},
    {"source": "ghost", "target": "a", "type": "generalization"}
  ]
}`

const sampleYAML = `
cx: 600
cy: 400
nodes:
  - id: a
    x: 0
    y: 0
    width: 100
    height: 50
    textLines:
      - {text: Order, type: title, style: bold}
      - {}
      - {text: "+id: int", align: start}
  - id: 2
    x: 200
    y: 0
    width: 100
    height: 50
links:
  - {source: a, target: "2", textStartTop: items, textEndBtmHidden: 1, textEndTopXPos: 4}
  - {source: ghost, target: a, type: generalization}
`

func checkSample(t *testing.T, d *Diagram) {
	t.Helper()
	require.Len(t, d.Nodes, 2)
	require.Len(t, d.Links, 2)

	assert.Equal(t, ID("a"), d.Nodes[0].ID)
	assert.Equal(t, ID("2"), d.Nodes[1].ID)
	assert.Equal(t, geom.Rect{X: 200, Y: 0, W: 100, H: 50}, d.Nodes[1].Rect())

	lines := d.Nodes[0].TextLines
	require.Len(t, lines, 3)
	assert.True(t, lines[0].IsTitle())
	assert.Equal(t, "bold", lines[0].Style)
	assert.True(t, lines[1].Divider)
	assert.False(t, lines[2].Divider)
	assert.Equal(t, AlignLeft, lines[2].Align.Normalize())

	l := d.Links[0]
	assert.Equal(t, "items", l.TextStartTop)
	assert.True(t, bool(l.TextEndBtmHidden))
	assert.Equal(t, 4.0, l.TextEndTopXPos)
	assert.True(t, d.Links[1].IsGeneralization())
}

func TestDecodeJSON(t *testing.T) {
	d, err := Decode([]byte(sampleJSON), SyntaxJSON, DecodeOptions{})
	require.NoError(t, err)
	checkSample(t, d)
}

func TestDecodeYAML(t *testing.T) {
	d, err := Decode([]byte(sampleYAML), SyntaxYAML, DecodeOptions{})
	require.NoError(t, err)
	checkSample(t, d)
}

func TestDecodeSchemaViolation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing nodes", `{"links": []}`},
		{"box without width", `{"nodes": [{"id": "a", "x": 0, "y": 0, "height": 10}]}`},
		{"link without target", `{"nodes": [], "links": [{"source": "a"}]}`},
		{"string coordinate", `{"nodes": [{"id": "a", "x": "0", "y": 0, "width": 1, "height": 1}]}`},
		{"bad align", `{"nodes": [{"id": "a", "x": 0, "y": 0, "width": 1, "height": 1, "textLines": [{"align": "justify"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), SyntaxJSON, DecodeOptions{})
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeSchemaViolation), "got %v", err)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"nodes": [`), SyntaxJSON, DecodeOptions{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidDiagram))

	_, err = Decode([]byte("  \n"), SyntaxJSON, DecodeOptions{})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidDiagram))
}

func TestDecodeSkipSchema(t *testing.T) {
	d, err := Decode([]byte(`{"links": [{"source": 1, "target": 2}]}`), SyntaxJSON, DecodeOptions{SkipSchema: true})
	require.NoError(t, err)
	assert.Empty(t, d.Nodes)
	assert.Equal(t, ID("1"), d.Links[0].Source)
}

func TestFlagValues(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true}, {`false`, false}, {`1`, true}, {`0`, false},
		{`"1"`, true}, {`"true"`, true}, {`null`, false}, {`2`, true},
	}
	for _, tt := range tests {
		var f Flag
		require.NoError(t, f.UnmarshalJSON([]byte(tt.in)), tt.in)
		assert.Equal(t, tt.want, bool(f), tt.in)
	}

	var f Flag
	assert.Error(t, f.UnmarshalJSON([]byte(`"maybe"`)))
}

func TestFlagSpellingsMatchSchema(t *testing.T) {
	doc := func(v string) string {
		return `{"nodes": [], "links": [{"source": "a", "target": "b", "textStartHidden": ` + v + `}]}`
	}

	accepted := []struct {
		in   string
		want bool
	}{
		{`"Yes"`, true}, {`"OFF"`, false}, {`"0.5"`, true}, {`"-0"`, false},
		{`""`, false}, {`"Null"`, false}, {`1e3`, true}, {`true`, true},
	}
	for _, tt := range accepted {
		d, err := Decode([]byte(doc(tt.in)), SyntaxJSON, DecodeOptions{})
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, bool(d.Links[0].TextStartHidden), tt.in)
	}

	for _, in := range []string{`"maybe"`, `"1x"`, `" true"`, `"."`} {
		_, err := Decode([]byte(doc(in)), SyntaxJSON, DecodeOptions{})
		require.Error(t, err, in)
		assert.True(t, errs.Is(err, errs.ErrCodeSchemaViolation), "%s: got %v", in, err)
	}

	yml := "nodes: []\nlinks:\n  - {source: a, target: b, textEndHidden: yes, textStartHidden: Off}\n"
	d, err := Decode([]byte(yml), SyntaxYAML, DecodeOptions{})
	require.NoError(t, err)
	assert.True(t, bool(d.Links[0].TextEndHidden))
	assert.False(t, bool(d.Links[0].TextStartHidden))

	_, err = Decode([]byte("nodes: []\nlinks:\n  - {source: a, target: b, textEndHidden: perhaps}\n"), SyntaxYAML, DecodeOptions{})
	assert.True(t, errs.Is(err, errs.ErrCodeSchemaViolation), "got %v", err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "classes.json")
	yamlPath := filepath.Join(dir, "classes.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o644))

	for _, p := range []string{jsonPath, yamlPath} {
		d, err := Load(p, DecodeOptions{})
		require.NoError(t, err, p)
		checkSample(t, d)
	}

	_, err := Load(filepath.Join(dir, "missing.json"), DecodeOptions{})
	assert.True(t, errs.Is(err, errs.ErrCodeFileNotFound))
}

func TestEncodeRoundTripKeepsDividers(t *testing.T) {
	d, err := Decode([]byte(sampleJSON), SyntaxJSON, DecodeOptions{})
	require.NoError(t, err)

	for _, syntax := range []Syntax{SyntaxJSON, SyntaxYAML} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, d, syntax))
		back, err := Decode(buf.Bytes(), syntax, DecodeOptions{})
		require.NoError(t, err, syntax)
		assert.True(t, back.Nodes[0].TextLines[1].Divider, syntax)
		assert.Equal(t, d.Links[0].TextStartTop, back.Links[0].TextStartTop)
	}
}

func TestSyntaxFor(t *testing.T) {
	assert.Equal(t, SyntaxYAML, SyntaxFor("a.yaml"))
	assert.Equal(t, SyntaxYAML, SyntaxFor("A.YML"))
	assert.Equal(t, SyntaxJSON, SyntaxFor("a.json"))
	assert.Equal(t, SyntaxJSON, SyntaxFor("a"))
}

func TestCanvas(t *testing.T) {
	d := &Diagram{CX: 600, CY: 400}
	w, h := d.Canvas()
	assert.Equal(t, 600.0, w)
	assert.Equal(t, 400.0, h)

	d = &Diagram{Nodes: []Box{
		{ID: "a", X: 10, Y: 10, Width: 100, Height: 50},
		{ID: "b", X: 300, Y: 200, Width: 80, Height: 40},
	}}
	w, h = d.Canvas()
	assert.Equal(t, 380.0, w)
	assert.Equal(t, 240.0, h)
}
