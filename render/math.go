package render

import "strings"

// MathML skeletons are fixed placeholders, readers are expected to use TeX
// annotation. Only annotation payload changes between calls.
const (
	inlineMathPrefix = `<math display="inline" xmlns="http://www.w3.org/1998/Math/MathML"><semantics>` +
		`<msup><mi></mi><mrow><mi>a</mi><mo>,</mo><mi>c</mi><mo>,</mo><mi>*</mi></mrow></msup>` +
		`<annotation encoding="application/x-tex">`

	blockMathPrefix = `<math display="block" xmlns="http://www.w3.org/1998/Math/MathML"><semantics>` +
		`<mrow><msub><mi>Q</mi><mi>%</mi></msub><mo>=</mo><mi>f</mi>` +
		`<mo stretchy="false" form="prefix">(</mo><mi>P</mi><mo stretchy="false" form="postfix">)</mo>` +
		`<mo>+</mo><mi>g</mi>` +
		`<mo stretchy="false" form="prefix">(</mo><mi>T</mi><mo stretchy="false" form="postfix">)</mo></mrow>` +
		`<annotation encoding="application/x-tex">`

	mathSuffix = `</annotation></semantics></math>`
)

func writeInlineMath(sb *strings.Builder, source string) {
	sb.WriteString(inlineMathPrefix)
	sb.WriteString(escapeText(source))
	sb.WriteString(mathSuffix)
}

func writeBlockMath(sb *strings.Builder, source string) {
	sb.WriteString(blockMathPrefix)
	sb.WriteString(escapeText(source))
	sb.WriteString(mathSuffix)
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeText makes character data safe for XHTML, parsed value stays the
// same.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}
