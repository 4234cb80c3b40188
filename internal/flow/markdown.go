package flow

import (
	"fmt"
	"regexp"
	"strings"
)

// The guide is written in a constrained markdown subset (h2/h3 headers,
// bold, italic, bullets, numbered items, links). Rendering is a fixed,
// ordered list of pattern rewrites applied top to bottom after HTML
// escaping; it is not a general markdown parser. Lists become styled divs
// so the email needs no open/close tag pairing.
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var markdownRules = []rewriteRule{
	{regexp.MustCompile(`(?m)^### (.*)$`), `<h3 style="color: #2c3e50; margin-top: 20px; margin-bottom: 10px;">${1}</h3>`},
	{regexp.MustCompile(`(?m)^## (.*)$`), `<h2 style="color: #2c3e50; margin-top: 25px; margin-bottom: 15px; border-bottom: 1px solid #eee; padding-bottom: 5px;">${1}</h2>`},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), `<strong>${1}</strong>`},
	{regexp.MustCompile(`\*(.*?)\*`), `<em>${1}</em>`},
	{regexp.MustCompile(`(?m)^\s*-\s+(.*)$`), `<div style="margin-left: 20px; margin-bottom: 5px; color: #34495e;">• ${1}</div>`},
	{regexp.MustCompile(`(?m)^\s*(\d+\.)\s+(.*)$`), `<div style="margin-left: 20px; margin-bottom: 8px; color: #34495e;"><b>${1}</b> ${2}</div>`},
	{regexp.MustCompile(`\[(.*?)\]\((.*?)\)`), `<a href="${2}" style="color: #3498db; text-decoration: none;">${1}</a>`},
}

// renderHTMLFragment converts guide markdown into an inline-styled HTML
// fragment. Raw angle brackets and ampersands in the source are escaped
// first so they can never produce markup.
func renderHTMLFragment(text string) string {
	text = escapeHTML(text)
	for _, rule := range markdownRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return strings.ReplaceAll(text, "\n", "<br>")
}

func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

const emailShellFmt = `<html>
    <body style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; line-height: 1.6; color: #333;">
        <div style="max-width: 600px; margin: 0 auto; padding: 20px; background-color: #ffffff;">
            <div style="text-align: center; margin-bottom: 30px;">
                <h1 style="color: #2c3e50; margin: 0;">Marketing Strategy Guide</h1>
                <p style="color: #7f8c8d; font-size: 14px;">Generated by Your AI Marketing Agent</p>
            </div>

            <div style="background-color: #f8f9fa; padding: 30px; border-radius: 12px; border: 1px solid #e9ecef;">
                %s
            </div>

            <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #95a5a6; font-size: 12px;">
                <p>Good luck with your campaign! 🚀</p>
            </div>
        </div>
    </body>
</html>`

// renderEmailHTML wraps the rendered guide fragment in the branded shell.
func renderEmailHTML(guide string) string {
	return fmt.Sprintf(emailShellFmt, renderHTMLFragment(guide))
}
