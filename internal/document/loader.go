// internal/document/loader.go
package document

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/beevik/etree"
	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// Format is the encoding of a document file.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

var (
	// ErrUnknownFormat is returned when a file's format cannot be told from its name.
	ErrUnknownFormat = errors.New("unknown document format")
	// ErrMalformed wraps decoding failures.
	ErrMalformed = errors.New("malformed document")
)

var (
	gzipReaderPool = sync.Pool{
		New: func() interface{} {
			return new(gzip.Reader)
		},
	}
	brotliReaderPool = sync.Pool{
		New: func() interface{} {
			return brotli.NewReader(nil)
		},
	}
)

var emptyReader = strings.NewReader("")

// DetectFormat derives the document format from a file name. A trailing
// compression suffix (.br, .gz) is ignored.
func DetectFormat(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".br"), ".gz")
	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, nil
	case ".xml", ".fo":
		return FormatXML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LoadFile reads and decodes a document, decompressing .br and .gz files.
func LoadFile(path string) (*schemas.Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".br":
		br := brotliReaderPool.Get().(*brotli.Reader)
		if err := br.Reset(f); err != nil {
			brotliReaderPool.Put(br)
			return nil, fmt.Errorf("brotli initialization error: %w", err)
		}
		defer func() {
			_ = br.Reset(emptyReader)
			brotliReaderPool.Put(br)
		}()
		r = br
	case ".gz":
		zr := gzipReaderPool.Get().(*gzip.Reader)
		if err := zr.Reset(f); err != nil {
			gzipReaderPool.Put(zr)
			return nil, fmt.Errorf("gzip initialization error: %w", err)
		}
		defer func() {
			_ = zr.Reset(emptyReader)
			gzipReaderPool.Put(zr)
		}()
		r = zr
	}

	doc, err := Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode reads a whole document in the given format.
func Decode(r io.Reader, format Format) (*schemas.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatXML:
		return decodeXML(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// DecodeSection parses one JSON-encoded section, as found on a line of a
// followed stream.
func DecodeSection(line []byte) (schemas.Section, error) {
	var s schemas.Section
	if err := json.Unmarshal(bytes.TrimSpace(line), &s); err != nil {
		return s, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

func decodeJSON(data []byte) (*schemas.Document, error) {
	var doc schemas.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &doc, nil
}

// -- XML --

// decodeXML reads the element form of a document:
//
//	<document>
//	  <section id="s1" breaks="3 7">
//	    <box width="1000"/>
//	    <space min="0" opt="2000" max="4000" conditional="true"/>
//	    <break value="-1000" class="page">
//	      <pending-after><border width="500" last="true"/></pending-after>
//	    </break>
//	  </section>
//	</document>
func decodeXML(data []byte) (*schemas.Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	root := tree.Root()
	if root == nil || root.Tag != "document" {
		return nil, fmt.Errorf("%w: root element must be <document>", ErrMalformed)
	}

	doc := &schemas.Document{}
	for _, sec := range root.SelectElements("section") {
		section := schemas.Section{ID: sec.SelectAttrValue("id", "")}
		if raw := strings.TrimSpace(sec.SelectAttrValue("breaks", "")); raw != "" {
			for _, field := range strings.Fields(raw) {
				idx, err := strconv.Atoi(field)
				if err != nil {
					return nil, fmt.Errorf("%w: section %q: bad break index %q", ErrMalformed, section.ID, field)
				}
				section.Breaks = append(section.Breaks, idx)
			}
		}
		for _, el := range sec.ChildElements() {
			spec, err := xmlElement(el)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", section.ID, err)
			}
			section.Elements = append(section.Elements, spec)
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc, nil
}

func xmlElement(el *etree.Element) (schemas.ElementSpec, error) {
	a := attrReader{el: el}
	spec := schemas.ElementSpec{
		Type:        schemas.ElementType(el.Tag),
		Name:        el.SelectAttrValue("name", ""),
		Width:       a.integer("width"),
		Stretch:     a.integer("stretch"),
		Shrink:      a.integer("shrink"),
		Value:       a.integer("value"),
		Flagged:     a.boolean("flagged"),
		Min:         a.integer("min"),
		Opt:         a.integer("opt"),
		Max:         a.integer("max"),
		Conditional: a.boolean("conditional"),
		Forcing:     a.boolean("forcing"),
		Side:        el.SelectAttrValue("side", ""),
		First:       a.boolean("first"),
		Last:        a.boolean("last"),
		BreakClass:  el.SelectAttrValue("class", ""),
	}
	// XSL writes forcing precedence as the keyword "force".
	if el.SelectAttrValue("precedence", "") == "force" {
		spec.Forcing = true
	} else {
		spec.Precedence = int(a.integer("precedence"))
	}
	if a.err != nil {
		return spec, a.err
	}

	for _, child := range el.ChildElements() {
		var dst *[]schemas.ElementSpec
		switch child.Tag {
		case "pending-before":
			dst = &spec.PendingBefore
		case "pending-after":
			dst = &spec.PendingAfter
		default:
			return spec, fmt.Errorf("%w: unexpected <%s> inside <%s>", ErrMalformed, child.Tag, el.Tag)
		}
		for _, mark := range child.ChildElements() {
			m, err := xmlElement(mark)
			if err != nil {
				return spec, err
			}
			*dst = append(*dst, m)
		}
	}
	return spec, nil
}

// attrReader parses numeric and boolean attributes, keeping the first error.
type attrReader struct {
	el  *etree.Element
	err error
}

func (a *attrReader) integer(key string) int64 {
	raw := a.el.SelectAttrValue(key, "")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%w: <%s %s=%q>: not an integer", ErrMalformed, a.el.Tag, key, raw)
	}
	return v
}

func (a *attrReader) boolean(key string) bool {
	raw := a.el.SelectAttrValue(key, "")
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%w: <%s %s=%q>: not a boolean", ErrMalformed, a.el.Tag, key, raw)
	}
	return v
}
