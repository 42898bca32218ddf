// Package xmlpath extracts values from inbound XML documents by path
// expression. It is used to determine the routing key that selects a process
// flow and, when a flow configures a key-identifier path, to override the
// generated interchange control number.
package xmlpath

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Extract evaluates a path expression against an XML document and returns the
// first matching node's text. An empty expression, an unparseable document
// and an unmatched expression all yield "": callers treat an empty result as
// "no value", never as a hard failure.
func Extract(document []byte, expr string) string {
	if strings.TrimSpace(expr) == "" {
		return ""
	}
	doc, err := xmlquery.Parse(bytes.NewReader(document))
	if err != nil {
		return ""
	}
	node, err := xmlquery.Query(doc, expr)
	if err != nil || node == nil {
		return ""
	}
	return strings.TrimSpace(node.InnerText())
}
