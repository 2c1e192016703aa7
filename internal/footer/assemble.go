package footer

import (
	"mime"
	"strings"

	"github.com/zarath/html-mail-footer/internal/email"
)

// htmlHeader opens every generated HTML document. The plaintext style keeps
// preformatted blocks readable in graphical clients.
const htmlHeader = `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN"
    "http://www.w3.org/TR/html4/loose.dtd">
<head>
<meta http-equiv="content-type" content="text/html; charset=UTF-8">
<style type="text/css">
#plaintext      {
    font-family:Fixedsys,Courier,monospace;
    padding:10px;
    white-space:pre-wrap;
}
</style>
</head>
<body>
`

const htmlFooter = "</body>\n</html>\n"

// preformat wraps plain text in the preformatted block the stylesheet above
// targets.
func preformat(txt string) string {
	return "<pre id=\"plaintext\">\n" + txt + "</pre>\n"
}

// assemble turns split body text into the multipart/alternative replacement
// part. The plain branch is the content, the reconstructed delimiter and the
// plain-mode signature lines; HTML-mode lines never reach it. The HTML
// branch is the content as a preformatted block followed by the classified
// segments in original order, raw or preformatted by mode. When the HTML
// references local images the HTML leaf and its resolved attachments are
// wrapped in a multipart/related container.
func assemble(content, signature string, images *Resolver) (*email.Part, error) {
	segs := Classify(signature)

	var plain strings.Builder
	plain.WriteString(content)
	plain.WriteString("-- \n")

	var html strings.Builder
	html.WriteString(htmlHeader)
	html.WriteString(preformat(content))

	for _, seg := range segs {
		switch seg.Mode {
		case ModeHTML:
			html.WriteString(seg.Text)
		default:
			plain.WriteString(seg.Text)
			html.WriteString(preformat(seg.Text))
		}
	}
	html.WriteString(htmlFooter)

	htmlPart, err := htmlBranch(html.String(), images)
	if err != nil {
		return nil, err
	}

	return email.NewMultipart("alternative",
		email.NewText("plain", plain.String()),
		htmlPart,
	), nil
}

// htmlBranch wraps the HTML document in a multipart/related container when
// it references local images, otherwise returns the bare HTML leaf.
func htmlBranch(doc string, images *Resolver) (*email.Part, error) {
	if !images.HasLocalImages(doc) {
		return email.NewText("html", doc), nil
	}

	rewritten, atts, err := images.Resolve(doc)
	if err != nil {
		return nil, err
	}

	parts := []*email.Part{email.NewText("html", rewritten)}
	for _, att := range atts {
		parts = append(parts, imagePart(att))
	}
	return email.NewMultipart("related", parts...), nil
}

// imagePart builds the inline attachment part for one resolved image.
func imagePart(att Attachment) *email.Part {
	p := &email.Part{Body: att.Data}
	p.Header.Set("Content-Type", "image/"+att.Subtype)
	p.Header.Set("Content-Transfer-Encoding", "base64")
	p.Header.Set("Content-ID", "<"+att.ContentID+">")
	p.Header.Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename}))
	return p
}
