// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract converts uploaded binaries (PDF, DOCX, plain text) into
// normalized plain text and enforces the minimum-length guard.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// defaultMinChars applies when the config leaves MinChars unset.
const defaultMinChars = 200

// Extract converts raw upload bytes into normalized text. The declared
// filename's extension selects the parser. It returns ErrUnsupportedFormat
// for unknown kinds, ErrCorruptDocument when parsing fails, and ErrTooShort
// when the normalized text falls below the minimum length.
func Extract(raw []byte, filename string, cfg types.ExtractConfig) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = parsePDF(raw)
	case ".docx":
		text, err = parseDOCX(raw)
	case ".txt", ".text", ".md":
		text = string(raw)
	default:
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrCorruptDocument, filename, err)
	}

	text = Normalize(text)

	minChars := cfg.MinChars
	if minChars <= 0 {
		minChars = defaultMinChars
	}
	if len(text) < minChars {
		return "", fmt.Errorf("%w: %d chars, need %d", types.ErrTooShort, len(text), minChars)
	}

	return text, nil
}

// Normalize collapses all whitespace runs to single spaces and trims the result.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// parsePDF extracts plain text from all pages of a PDF.
func parsePDF(raw []byte) (text string, err error) {
	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text")
	}
	return b.String(), nil
}

// parseDOCX extracts paragraph text from word/document.xml inside the
// DOCX ZIP container.
func parseDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("opening docx container: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, openErr := f.Open()
		if openErr != nil {
			return "", fmt.Errorf("opening document.xml: %w", openErr)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading document.xml: %w", err)
		}
		break
	}
	if len(docXML) == 0 {
		return "", fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(docXML))
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return "", fmt.Errorf("decoding document.xml: %w", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
