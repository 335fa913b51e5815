// Package slides extracts plain text from PowerPoint (.pptx) decks.
package slides

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
	relNamespace     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// ErrNoSlides is returned for archives without any slide parts.
var ErrNoSlides = errors.New("no slides found")

// Slide is the text of one slide in deck order. Number starts at 1.
type Slide struct {
	Number int
	Texts  []string
}

// Deck XML shapes. Only the elements carrying text are mapped; element
// names match regardless of namespace prefix.
type (
	slideXML struct {
		CommonData struct {
			Tree struct {
				Shapes []shapeXML `xml:",any"`
			} `xml:"spTree"`
		} `xml:"cSld"`
	}
	shapeXML struct {
		XMLName xml.Name
		TxBody  *txBodyXML `xml:"txBody"`
		Table   *tableXML  `xml:"graphic>graphicData>tbl"`
	}
	txBodyXML struct {
		Paragraphs []paragraphXML `xml:"p"`
	}
	paragraphXML struct {
		Runs []runXML `xml:",any"`
	}
	runXML struct {
		XMLName xml.Name
		Text    string `xml:"t"`
	}
	tableXML struct {
		Rows []struct {
			Cells []struct {
				TxBody txBodyXML `xml:"txBody"`
			} `xml:"tc"`
		} `xml:"tr"`
	}
	presentationXML struct {
		SlideIDs []struct {
			RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldIdLst>sldId"`
	}
	relationshipsXML struct {
		Relationships []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
)

func (b *txBodyXML) text() string {
	paras := make([]string, 0, len(b.Paragraphs))
	for _, p := range b.Paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs {
			switch r.XMLName.Local {
			case "r", "fld":
				sb.WriteString(r.Text)
			case "br":
				sb.WriteString("\n")
			}
		}
		paras = append(paras, sb.String())
	}
	return strings.Join(paras, "\n")
}

// ExtractFile reads the deck at path and returns its formatted text.
func ExtractFile(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer zr.Close()

	slides, err := Extract(&zr.Reader)
	if err != nil {
		return "", err
	}
	return Format(slides), nil
}

// Extract reads every slide of an opened deck in presentation order.
func Extract(zr *zip.Reader) ([]Slide, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	parts, err := slideOrder(files)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrNoSlides
	}

	slides := make([]Slide, 0, len(parts))
	for i, name := range parts {
		var doc slideXML
		if err := decodePart(files[name], &doc); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		slides = append(slides, Slide{Number: i + 1, Texts: shapeTexts(doc.CommonData.Tree.Shapes)})
	}
	return slides, nil
}

func shapeTexts(shapes []shapeXML) []string {
	var texts []string
	for _, sh := range shapes {
		switch {
		case sh.XMLName.Local == "sp" && sh.TxBody != nil:
			if t := sh.TxBody.text(); strings.TrimSpace(t) != "" {
				texts = append(texts, t)
			}
		case sh.XMLName.Local == "graphicFrame" && sh.Table != nil:
			for _, row := range sh.Table.Rows {
				cells := make([]string, 0, len(row.Cells))
				for _, c := range row.Cells {
					cells = append(cells, c.TxBody.text())
				}
				texts = append(texts, strings.Join(cells, " | "))
			}
		}
	}
	return texts
}

// Format renders slides with a "--- Slide N ---" header before each.
func Format(slides []Slide) string {
	var lines []string
	for _, s := range slides {
		lines = append(lines, fmt.Sprintf("--- Slide %d ---", s.Number))
		lines = append(lines, s.Texts...)
	}
	return strings.Join(lines, "\n")
}

// slideOrder lists slide part names in presentation order. Decks without a
// readable slide list fall back to the numeric order of the part names.
func slideOrder(files map[string]*zip.File) ([]string, error) {
	if ordered, ok := orderFromPresentation(files); ok {
		return ordered, nil
	}

	type numbered struct {
		name string
		n    int
	}
	var found []numbered
	for name := range files {
		m := slidePartPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("bad slide part name %s: %w", name, err)
		}
		found = append(found, numbered{name: name, n: n})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names, nil
}

func orderFromPresentation(files map[string]*zip.File) ([]string, bool) {
	presFile, relsFile := files[presentationPart], files[presentationRels]
	if presFile == nil || relsFile == nil {
		return nil, false
	}

	var pres presentationXML
	var rels relationshipsXML
	if decodePart(presFile, &pres) != nil || decodePart(relsFile, &rels) != nil {
		return nil, false
	}

	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		targets[r.ID] = path.Join("ppt", r.Target)
	}

	names := make([]string, 0, len(pres.SlideIDs))
	for _, id := range pres.SlideIDs {
		name, ok := targets[id.RelID]
		if !ok || files[name] == nil {
			return nil, false
		}
		names = append(names, name)
	}
	return names, len(names) > 0
}

func decodePart(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(io.LimitReader(rc, 64<<20)).Decode(v)
}
