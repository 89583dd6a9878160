package feeder

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/advancedlogic/GoOse/pkg/goose"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// ExtractText 는 피드 항목 HTML 에서 시 본문을 뽑는다.
// readability -> trafilatura -> fallback(보통 description) 순서로 시도한다.
// 시는 줄바꿈이 의미를 가지므로 <br>, <p> 는 개행으로 보존한다.
func ExtractText(contentHTML, fallback, pageURL string) string {
	if strings.TrimSpace(contentHTML) != "" {
		if text := textWithReadability(contentHTML, pageURL); text != "" {
			return text
		}
		if text := textWithTrafilatura(contentHTML); text != "" {
			return text
		}
	}
	if text := htmlToText(fallback); text != "" {
		return text
	}
	return htmlToText(contentHTML)
}

// ExtractPage 는 렌더링된 전체 페이지에서 본문과 대표 이미지를 뽑는다.
// 페이지에는 메뉴, 댓글 등 잡음이 많아 goose 를 마지막 추출기로 둔다.
func ExtractPage(pageHTML, pageURL string) (text, image string) {
	if strings.TrimSpace(pageHTML) == "" {
		return "", ""
	}
	image = ExtractImage(pageHTML, pageURL)
	if text = textWithReadability(pageHTML, pageURL); text != "" {
		return text, image
	}
	if text = textWithTrafilatura(pageHTML); text != "" {
		return text, image
	}
	gText, gImage := textWithGoose(pageHTML)
	if image == "" {
		image = gImage
	}
	return gText, image
}

func textWithGoose(htmlStr string) (string, string) {
	article, err := goose.New().ExtractFromRawHTML(htmlStr, "")
	if err != nil || article == nil {
		return "", ""
	}
	return normalizeLines(article.CleanedText), article.TopImage
}

func textWithReadability(htmlStr, pageURL string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	markLineBreaks(doc)

	article, err := readability.FromDocument(doc, parseBase(pageURL))
	if err != nil {
		return ""
	}
	return normalizeLines(article.TextContent)
}

func textWithTrafilatura(htmlStr string) string {
	result, err := trafilatura.Extract(strings.NewReader(htmlStr), trafilatura.Options{})
	if err != nil || result == nil {
		return ""
	}
	return normalizeLines(result.ContentText)
}

// markLineBreaks 는 <br> 을 "\n" 텍스트 노드로 바꾸고 블록 요소 끝에 개행을 붙인다.
func markLineBreaks(doc *html.Node) {
	var brs, blocks []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "br":
				brs = append(brs, n)
			case "p", "div", "li", "h1", "h2", "h3", "h4", "blockquote":
				blocks = append(blocks, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, br := range brs {
		if br.Parent == nil {
			continue
		}
		br.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: "\n"}, br)
		br.Parent.RemoveChild(br)
	}
	for _, b := range blocks {
		sep := "\n"
		if b.Data == "p" {
			sep = "\n\n"
		}
		b.AppendChild(&html.Node{Type: html.TextNode, Data: sep})
	}
}

// htmlToText 는 태그를 벗겨 낸 평문을 돌려준다. 입력이 평문이어도 그대로 동작한다.
func htmlToText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return normalizeLines(s)
	}
	markLineBreaks(doc)

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return normalizeLines(b.String())
}

// normalizeLines 는 각 줄을 trim 하고 연속된 빈 줄을 하나로 합친다.
func normalizeLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// ExtractImage 는 항목 HTML 에서 대표 이미지를 찾는다.
// 우선순위: readability -> og/twitter 메타 -> link rel=image_src -> 본문 첫 <img>
func ExtractImage(contentHTML, pageURL string) string {
	if strings.TrimSpace(contentHTML) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(contentHTML))
	if err != nil {
		return ""
	}
	baseURL := parseBase(pageURL)

	if imgURL := findTopImageWithReadability(contentHTML, baseURL); imgURL != "" {
		return resolveImageURL(imgURL, baseURL)
	}
	if imgURL := findTopImageFromMeta(doc); imgURL != "" {
		return resolveImageURL(imgURL, baseURL)
	}
	if imgURL := findTopImageFromLink(doc); imgURL != "" {
		return resolveImageURL(imgURL, baseURL)
	}
	return findFirstImage(doc, baseURL, 50)
}

func parseBase(pageURL string) *url.URL {
	if pageURL == "" {
		return nil
	}
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() {
		return nil
	}
	return u
}

// readability 는 문서를 변경하므로 별도로 파싱한다.
func findTopImageWithReadability(htmlStr string, baseURL *url.URL) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	article, err := readability.FromDocument(doc, baseURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Image)
}

func findTopImageFromMeta(doc *html.Node) string {
	if u := findMetaContent(doc, "property", "og:image", "og:image:url", "og:image:secure_url"); u != "" {
		return u
	}
	if u := findMetaContent(doc, "name", "twitter:image", "twitter:image:src", "thumbnail", "image"); u != "" {
		return u
	}
	return findMetaContent(doc, "itemprop", "image")
}

func findMetaContent(root *html.Node, key string, candidates ...string) string {
	candidateSet := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		candidateSet[strings.ToLower(c)] = struct{}{}
	}

	var result string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || result != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var attrValue, content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case key:
					attrValue = strings.ToLower(a.Val)
				case "content":
					content = strings.TrimSpace(a.Val)
				}
			}
			if _, ok := candidateSet[attrValue]; ok && content != "" {
				result = content
				return
			}
		}
		for c := n.FirstChild; c != nil && result == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return result
}

func findTopImageFromLink(doc *html.Node) string {
	var result string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || result != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "link" {
			var rel, href string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "rel":
					rel = strings.ToLower(a.Val)
				case "href":
					href = a.Val
				}
			}
			if href != "" && (rel == "image_src" || strings.Contains(rel, "thumbnail")) {
				result = href
				return
			}
		}
		for c := n.FirstChild; c != nil && result == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return result
}

// findFirstImage 는 선언된 크기가 minSize 미만인 이미지(트래킹 픽셀 등)를 건너뛴다.
func findFirstImage(doc *html.Node, baseURL *url.URL, minSize int) string {
	var result string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || result != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "img" {
			var src string
			tiny := false
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "src":
					src = strings.TrimSpace(a.Val)
				case "width", "height":
					if v, err := strconv.Atoi(a.Val); err == nil && v < minSize {
						tiny = true
					}
				}
			}
			if abs, ok := makeAbsoluteImageURL(src, baseURL); ok && !tiny {
				result = abs
				return
			}
		}
		for c := n.FirstChild; c != nil && result == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return result
}

func makeAbsoluteImageURL(src string, baseURL *url.URL) (string, bool) {
	if src == "" || strings.HasPrefix(src, "data:") {
		return "", false
	}
	parsed, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if parsed.IsAbs() {
		return parsed.String(), true
	}
	if baseURL == nil {
		return "", false
	}
	return baseURL.ResolveReference(parsed).String(), true
}

func resolveImageURL(src string, baseURL *url.URL) string {
	if abs, ok := makeAbsoluteImageURL(src, baseURL); ok {
		return abs
	}
	return src
}
