package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// assetAttrs lists the attributes that pull resources into the rendered
// page, by element.
var assetAttrs = map[atom.Atom]string{
	atom.Img:    "src",
	atom.Link:   "href",
	atom.Script: "src",
	atom.Source: "src",
}

// RewriteAssetPaths resolves relative asset references (images, stylesheets,
// scripts) against baseDir and turns them into file:// URLs. The page is
// loaded from a temp directory, so relative references would otherwise break.
// References escaping baseDir are left untouched. An empty baseDir is a no-op.
func RewriteAssetPaths(htmlContent, baseDir string) (string, error) {
	if baseDir == "" {
		return htmlContent, nil
	}

	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	doc, fragment, err := parseDocument(htmlContent)
	if err != nil {
		return "", err
	}
	walkAssets(doc, absDir)
	return render(doc, fragment)
}

// parseDocument parses full documents as such and everything else as a
// body fragment, so rendering does not add <html><body> around fragments.
func parseDocument(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, true, nil
}

func render(doc *html.Node, fragment bool) (string, error) {
	var sb strings.Builder
	if !fragment {
		err := html.Render(&sb, doc)
		return sb.String(), err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func walkAssets(n *html.Node, dir string) {
	if n.Type == html.ElementNode {
		if key, ok := assetAttrs[n.DataAtom]; ok {
			for i, a := range n.Attr {
				if a.Key != key || !isLocalRelative(a.Val) {
					continue
				}
				abs := filepath.Join(dir, a.Val)
				if within(abs, dir) {
					n.Attr[i].Val = fileURL(abs)
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkAssets(c, dir)
	}
}

// isLocalRelative reports whether ref is a relative filesystem path: not a
// URL of any scheme, not protocol-relative, not a fragment, not absolute.
func isLocalRelative(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return !filepath.IsAbs(ref)
}

// within reports whether path lies inside dir.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileURL(abs string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}
