package source

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

func readDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", docxBody, err)
		}
		defer rc.Close()
		return DOCXText(rc)
	}
	return "", fmt.Errorf("docx has no %s", docxBody)
}

// DOCXText flattens a WordprocessingML document body. Paragraphs become
// lines; consecutive bold runs are wrapped in one pair of ** markers.
func DOCXText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		out       strings.Builder
		paragraph strings.Builder
		bold      strings.Builder
		run       strings.Builder
		inRunProp bool
		runBold   bool
		inText    bool
	)

	flushBold := func() {
		if text := strings.TrimSpace(bold.String()); text != "" {
			paragraph.WriteString("**" + text + "**")
		}
		bold.Reset()
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing docx: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				run.Reset()
				runBold = false
			case "rPr":
				inRunProp = true
			case "b":
				if inRunProp {
					runBold = boolAttr(t, true)
				}
			case "t":
				inText = true
			case "tab":
				run.WriteByte('\t')
			case "br", "cr":
				run.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "rPr":
				inRunProp = false
			case "t":
				inText = false
			case "r":
				if runBold {
					bold.WriteString(run.String())
				} else {
					flushBold()
					paragraph.WriteString(run.String())
				}
				run.Reset()
			case "p":
				flushBold()
				out.WriteString(paragraph.String())
				out.WriteByte('\n')
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				run.Write(t)
			}
		}
	}
	return tidy(out.String()), nil
}

// boolAttr reads an OOXML on/off property. A missing w:val means on.
func boolAttr(e xml.StartElement, fallback bool) bool {
	for _, a := range e.Attr {
		if a.Name.Local != "val" {
			continue
		}
		switch strings.ToLower(a.Value) {
		case "0", "false", "off", "none":
			return false
		default:
			return true
		}
	}
	return fallback
}
