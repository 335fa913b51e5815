package slides

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slideHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:nvGrpSpPr/><p:grpSpPr/>`

const slideFooter = `</p:spTree></p:cSld></p:sld>`

func textShape(paragraphs ...string) string {
	var buf bytes.Buffer
	buf.WriteString(`<p:sp><p:nvSpPr/><p:txBody><a:bodyPr/>`)
	for _, p := range paragraphs {
		buf.WriteString(`<a:p><a:pPr/><a:r><a:rPr lang="en"/><a:t>` + p + `</a:t></a:r><a:endParaRPr/></a:p>`)
	}
	buf.WriteString(`</p:txBody></p:sp>`)
	return buf.String()
}

func tableShape(rows ...[]string) string {
	var buf bytes.Buffer
	buf.WriteString(`<p:graphicFrame><a:graphic><a:graphicData><a:tbl>`)
	for _, row := range rows {
		buf.WriteString(`<a:tr>`)
		for _, cell := range row {
			buf.WriteString(`<a:tc><a:txBody><a:p><a:r><a:t>` + cell + `</a:t></a:r></a:p></a:txBody></a:tc>`)
		}
		buf.WriteString(`</a:tr>`)
	}
	buf.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return buf.String()
}

func buildDeck(t *testing.T, parts map[string]string) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return zr
}

func TestExtract_NumericOrderWithoutPresentation(t *testing.T) {
	zr := buildDeck(t, map[string]string{
		"ppt/slides/slide10.xml": slideHeader + textShape("Ten") + slideFooter,
		"ppt/slides/slide2.xml":  slideHeader + textShape("Two") + slideFooter,
		"ppt/slides/slide1.xml":  slideHeader + textShape("One") + slideFooter,

		"ppt/slides/_rels/slide1.xml.rels": `<Relationships/>`,
	})

	slides, err := Extract(zr)
	require.NoError(t, err)
	require.Len(t, slides, 3)
	assert.Equal(t, []string{"One"}, slides[0].Texts)
	assert.Equal(t, []string{"Two"}, slides[1].Texts)
	assert.Equal(t, []string{"Ten"}, slides[2].Texts)
	assert.Equal(t, 3, slides[2].Number)
}

func TestExtract_PresentationOrder(t *testing.T) {
	zr := buildDeck(t, map[string]string{
		presentationPart: `<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="` + relNamespace + `">
<p:sldIdLst><p:sldId id="256" r:id="rId3"/><p:sldId id="257" r:id="rId2"/></p:sldIdLst></p:presentation>`,
		presentationRels: `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId2" Type="slide" Target="slides/slide1.xml"/>
<Relationship Id="rId3" Type="slide" Target="slides/slide2.xml"/></Relationships>`,
		"ppt/slides/slide1.xml": slideHeader + textShape("Moved") + slideFooter,
		"ppt/slides/slide2.xml": slideHeader + textShape("Opening") + slideFooter,
	})

	slides, err := Extract(zr)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, []string{"Opening"}, slides[0].Texts)
	assert.Equal(t, []string{"Moved"}, slides[1].Texts)
}

func TestExtract_ShapesAndTables(t *testing.T) {
	zr := buildDeck(t, map[string]string{
		"ppt/slides/slide1.xml": slideHeader +
			textShape("Title", "Subtitle") +
			`<p:pic><p:nvPicPr/></p:pic>` +
			textShape("") +
			tableShape([]string{"Plan", "Price"}, []string{"Basic", "$10"}) +
			slideFooter,
	})

	slides, err := Extract(zr)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, []string{"Title\nSubtitle", "Plan | Price", "Basic | $10"}, slides[0].Texts)
}

func TestExtract_NoSlides(t *testing.T) {
	zr := buildDeck(t, map[string]string{"[Content_Types].xml": `<Types/>`})

	_, err := Extract(zr)
	assert.ErrorIs(t, err, ErrNoSlides)
}

func TestExtract_MalformedSlide(t *testing.T) {
	zr := buildDeck(t, map[string]string{"ppt/slides/slide1.xml": `<p:sld><unclosed>`})

	_, err := Extract(zr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ppt/slides/slide1.xml")
}

func TestFormat(t *testing.T) {
	out := Format([]Slide{
		{Number: 1, Texts: []string{"Hello"}},
		{Number: 2},
		{Number: 3, Texts: []string{"a | b"}},
	})
	assert.Equal(t, "--- Slide 1 ---\nHello\n--- Slide 2 ---\n--- Slide 3 ---\na | b", out)
}

func TestExtractFile(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("ppt/slides/slide1.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(slideHeader + textShape("Deck") + slideFooter))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	p := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o600))

	out, err := ExtractFile(p)
	require.NoError(t, err)
	assert.Equal(t, "--- Slide 1 ---\nDeck", out)

	_, err = ExtractFile(filepath.Join(t.TempDir(), "missing.pptx"))
	assert.Error(t, err)
}
