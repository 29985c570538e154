// probe.go holds the read-only XML diagnostics used to inspect an
// unfamiliar KML schema before writing a real extraction path.
package kmlsrc

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// localName strips any {namespace} prefix from an element name.
// encoding/xml already splits the namespace into Name.Space, but some
// KML producers embed it in the local part too.
func localName(name string) string {
	var b strings.Builder
	erase := false
	for _, c := range name {
		switch c {
		case '{':
			erase = true
		case '}':
			erase = false
		default:
			if !erase {
				b.WriteRune(c)
			}
		}
	}
	return b.String()
}

// PrintTagTree writes every open tag indented by nesting depth, one
// line per tag.
func PrintTagTree(r io.Reader, w io.Writer) error {
	dec := xml.NewDecoder(r)
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("kmlsrc: parse error: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			fmt.Fprintf(w, "%s-%s\n", strings.Repeat("  ", depth), localName(el.Name.Local))
			depth++
		case xml.EndElement:
			depth--
		}
	}
}

// PrintTagCount writes every distinct tag with its occurrence count,
// least frequent first.
func PrintTagCount(r io.Reader, w io.Writer) error {
	dec := xml.NewDecoder(r)
	counts := make(map[string]int)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("kmlsrc: parse error: %w", err)
		}
		if el, ok := tok.(xml.StartElement); ok {
			counts[localName(el.Name.Local)]++
		}
	}
	type tagCount struct {
		tag   string
		count int
	}
	sorted := make([]tagCount, 0, len(counts))
	for tag, n := range counts {
		sorted = append(sorted, tagCount{tag, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count < sorted[j].count
		}
		return sorted[i].tag < sorted[j].tag
	})
	for _, tc := range sorted {
		fmt.Fprintf(w, "Tag: %s, count: %d\n", tc.tag, tc.count)
	}
	return nil
}

// CheckTagChild reports whether every occurrence of parent has at least
// one direct child element named child.
func CheckTagChild(r io.Reader, parent, child string) (bool, error) {
	dec := xml.NewDecoder(r)
	// depth of the innermost open parent tag, -1 when outside one
	parentDepth := -1
	depth := 0
	sawChild := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("kmlsrc: parse error: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			name := localName(el.Name.Local)
			if parentDepth >= 0 && depth == parentDepth+1 && name == child {
				sawChild = true
			}
			if name == parent && parentDepth < 0 {
				parentDepth = depth
				sawChild = false
			}
			depth++
		case xml.EndElement:
			depth--
			if parentDepth == depth {
				if !sawChild {
					return false, nil
				}
				parentDepth = -1
			}
		}
	}
}

// CheckNonemptyTag reports whether every occurrence of tag holds
// non-whitespace character data.
func CheckNonemptyTag(r io.Reader, tag string) (bool, error) {
	dec := xml.NewDecoder(r)
	tagDepth := -1
	depth := 0
	nonempty := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("kmlsrc: parse error: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if localName(el.Name.Local) == tag && tagDepth < 0 {
				tagDepth = depth
				nonempty = false
			}
			depth++
		case xml.EndElement:
			depth--
			if tagDepth == depth {
				if !nonempty {
					return false, nil
				}
				tagDepth = -1
			}
		case xml.CharData:
			if tagDepth >= 0 && strings.TrimSpace(string(el)) != "" {
				nonempty = true
			}
		}
	}
}
