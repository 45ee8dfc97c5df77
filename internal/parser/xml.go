package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/harrison/cmdlist/internal/models"
	"golang.org/x/net/html/charset"
)

// ParseError reports an XML file that could not be parsed.
type ParseError struct {
	File string // Path of the offending file
	Err  error  // Underlying decoder error
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", filepath.Base(e.File), e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoRoot = errors.New("document has no root element")

// Parse reads an XML document and returns its root element as a Node tree.
// Element and attribute namespaces are dropped, only local names are kept.
// Non-UTF-8 documents are decoded according to their XML declaration.
func Parse(r io.Reader) (*models.Node, error) {
	dec := xml.NewDecoder(r)
	// Documents may declare a legacy encoding such as ISO-8859-1 or KOI8-R
	dec.CharsetReader = charset.NewReaderLabel

	var root *models.Node
	var stack []*models.Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &models.Node{
				Tag:   t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				node.Attrs[a.Name.Local] = a.Value
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("document has more than one root element")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			// The decoder checks that start and end tags match
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, errNoRoot
	}
	return root, nil
}

// ParseFile opens and parses the XML file at path.
// Decoding failures are returned as a *ParseError.
func ParseFile(path string) (*models.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	root, err := Parse(file)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}
	return root, nil
}
