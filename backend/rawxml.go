package backend

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/weiihann/sheetbench/workload"
)

const (
	nsMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsDocumentRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	relOfficeDoc    = nsDocumentRels + "/officeDocument"
	relWorksheet    = nsDocumentRels + "/worksheet"
	xmlDeclaration  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	partWorkbook    = "xl/workbook.xml"
	partWorkbookRel = "xl/_rels/workbook.xml.rels"
	partSheet1      = "xl/worksheets/sheet1.xml"
	partShared      = "xl/sharedStrings.xml"
)

var staticParts = []struct {
	name, body string
}{
	{"[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
		`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
		`</Types>`},
	{"_rels/.rels", `<Relationships xmlns="` + nsPackageRels + `">` +
		`<Relationship Id="rId1" Type="` + relOfficeDoc + `" Target="xl/workbook.xml"/>` +
		`</Relationships>`},
	{partWorkbook, `<workbook xmlns="` + nsMain + `" xmlns:r="` + nsDocumentRels + `">` +
		`<sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets>` +
		`</workbook>`},
	{partWorkbookRel, `<Relationships xmlns="` + nsPackageRels + `">` +
		`<Relationship Id="rId1" Type="` + relWorksheet + `" Target="worksheets/sheet1.xml"/>` +
		`</Relationships>`},
}

// rawWriter emits a minimal single-sheet package. Header labels are inline
// strings; data cells are plain numbers.
type rawWriter struct{}

func (rawWriter) Write(ctx context.Context, path string, rows, cols int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	zw := zip.NewWriter(f)

	for _, p := range staticParts {
		w, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create part %s: %w", p.name, err)
		}

		if _, err := io.WriteString(w, xmlDeclaration+p.body); err != nil {
			return fmt.Errorf("write part %s: %w", p.name, err)
		}
	}

	sheet, err := zw.Create(partSheet1)
	if err != nil {
		return fmt.Errorf("create part %s: %w", partSheet1, err)
	}

	if err := writeSheet(ctx, sheet, rows, cols); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}

	return nil
}

func writeSheet(ctx context.Context, dst io.Writer, rows, cols int) error {
	w := bufio.NewWriterSize(dst, 64*1024)

	refs := make([]string, cols)
	for c := range refs {
		refs[c] = columnName(c + 1)
	}

	w.WriteString(xmlDeclaration)
	w.WriteString(`<worksheet xmlns="` + nsMain + `"><sheetData>`)

	w.WriteString(`<row r="1">`)
	for c, label := range workload.Header(cols) {
		w.WriteString(`<c r="` + refs[c] + `1" t="inlineStr"><is><t>`)
		xml.EscapeText(w, []byte(label))
		w.WriteString(`</t></is></c>`)
	}
	w.WriteString(`</row>`)

	data := make([]int, 0, cols)
	num := make([]byte, 0, 20)

	for r := 1; r <= rows; r++ {
		if r%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rowRef := strconv.Itoa(r + 1)
		data = workload.AppendDataRow(data, r, cols)

		w.WriteString(`<row r="` + rowRef + `">`)
		for c, v := range data {
			w.WriteString(`<c r="` + refs[c] + rowRef + `"><v>`)
			w.Write(strconv.AppendInt(num[:0], int64(v), 10))
			w.WriteString(`</v></c>`)
		}
		w.WriteString(`</row>`)
	}

	w.WriteString(`</sheetData></worksheet>`)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", partSheet1, err)
	}

	return nil
}

// columnName converts a 1-based column index to its letters (1 -> A, 27 -> AA).
func columnName(n int) string {
	var buf [8]byte
	i := len(buf)

	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}

	return string(buf[i:])
}

// rawReader streams the first worksheet part with encoding/xml and resolves
// every cell value.
type rawReader struct{}

func (rawReader) Read(ctx context.Context, path string) (Counts, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Counts{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[strings.TrimPrefix(f.Name, "/")] = f
	}

	sheetPart, err := firstSheetPart(parts)
	if err != nil {
		return Counts{}, err
	}

	var shared []string
	if f, ok := parts[partShared]; ok {
		shared, err = readSharedStrings(f)
		if err != nil {
			return Counts{}, err
		}
	}

	f, ok := parts[sheetPart]
	if !ok {
		return Counts{}, fmt.Errorf("worksheet part %s not found", sheetPart)
	}

	rc, err := f.Open()
	if err != nil {
		return Counts{}, fmt.Errorf("open %s: %w", sheetPart, err)
	}
	defer rc.Close()

	return scanSheet(ctx, rc, shared)
}

type xmlSheetRef struct {
	ID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xmlWorkbook struct {
	Sheets []xmlSheetRef `xml:"sheets>sheet"`
}

type xmlRelationships struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func firstSheetPart(parts map[string]*zip.File) (string, error) {
	var wb xmlWorkbook
	if err := decodePart(parts, partWorkbook, &wb); err != nil {
		return "", err
	}

	if len(wb.Sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}

	var rels xmlRelationships
	if err := decodePart(parts, partWorkbookRel, &rels); err != nil {
		return "", err
	}

	for _, rel := range rels.Rels {
		if rel.ID != wb.Sheets[0].ID {
			continue
		}

		if strings.HasPrefix(rel.Target, "/") {
			return strings.TrimPrefix(rel.Target, "/"), nil
		}

		return path.Join("xl", rel.Target), nil
	}

	return "", fmt.Errorf("no relationship for sheet %q", wb.Sheets[0].ID)
}

func decodePart(parts map[string]*zip.File, name string, v any) error {
	f, ok := parts[name]
	if !ok {
		return fmt.Errorf("part %s not found", name)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	return nil
}

func readSharedStrings(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", partShared, err)
	}
	defer rc.Close()

	var (
		shared []string
		text   strings.Builder
		inSI   bool
		inT    bool
	)

	dec := xml.NewDecoder(rc)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return shared, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", partShared, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inSI = true
				text.Reset()
			case "t":
				inT = inSI
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				inSI = false
				shared = append(shared, text.String())
			case "t":
				inT = false
			}
		case xml.CharData:
			if inT {
				text.Write(t)
			}
		}
	}
}

func scanSheet(ctx context.Context, r io.Reader, shared []string) (Counts, error) {
	var (
		counts   Counts
		cellType string
		value    strings.Builder
		inRow    bool
		inCell   bool
		inValue  bool
	)

	dec := xml.NewDecoder(bufio.NewReaderSize(r, 64*1024))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return counts, fmt.Errorf("decode worksheet: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				inRow = true
				counts.Rows++

				if counts.Rows%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return counts, err
					}
				}
			case "c":
				if !inRow {
					continue
				}

				inCell = true
				cellType = ""
				value.Reset()

				for _, a := range t.Attr {
					if a.Name.Local == "t" {
						cellType = a.Value
					}
				}
			case "v", "t":
				inValue = inCell
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "row":
				inRow = false
			case "c":
				if !inCell {
					continue
				}

				inCell = false
				counts.Cells++

				if _, err := resolveCell(cellType, value.String(), shared); err != nil {
					return counts, fmt.Errorf("row %d: %w", counts.Rows, err)
				}
			case "v", "t":
				inValue = false
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		}
	}

	return counts, nil
}

func resolveCell(cellType, raw string, shared []string) (string, error) {
	if cellType != "s" {
		return raw, nil
	}

	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("bad shared string index %q: %w", raw, err)
	}

	if idx < 0 || idx >= len(shared) {
		return "", fmt.Errorf("shared string index %d out of range", idx)
	}

	return shared[idx], nil
}
