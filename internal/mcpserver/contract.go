package mcpserver

// PreviewFormatContract describes the documentation annotations a
// component must carry for its previews to resolve.
const PreviewFormatContract = `# Sigil Preview Annotation Contract

A component gets an inline preview when its declaration carries preview
annotations in a preceding documentation block.

## Structure

` + "```" + `ts
/**
 * @name HomeIcon
 * @preview https://example.com/icons/home.svg
 */
export const HomeIcon = (props: IconProps) => { ... };
` + "```" + `

## Rules

1. **` + "`" + `@preview` + "`" + ` carries the image reference.** Either a remote
   ` + "`" + `http(s)` + "`" + ` URL or an embedded ` + "`" + `data:image/<type>;base64,<payload>` + "`" + ` URI.
2. **` + "`" + `@name` + "`" + ` binds the preview to a specific symbol.** When a file
   declares several components, pair each ` + "`" + `@preview` + "`" + ` with an ` + "`" + `@name` + "`" + `
   so lookups stay unambiguous. Without ` + "`" + `@name` + "`" + `, the first ` + "`" + `@preview` + "`" + `
   in the file is used for any symbol the file exports.
3. **Only exported declarations resolve.** The symbol must appear in an
   ` + "`" + `export const` + "`" + `, ` + "`" + `export function` + "`" + `, or ` + "`" + `export class` + "`" + ` declaration.
4. **Component names start with an uppercase letter.** Lowercase imports
   are never treated as preview candidates.
5. **SVG references adapt to the theme.** ` + "`" + `currentColor` + "`" + ` tokens are
   replaced and a contrasting background is injected, so author icons
   with ` + "`" + `currentColor` + "`" + ` rather than hard-coded fills.
6. **Embedded payloads are cached verbatim for rasters** (png, jpeg,
   gif, webp); embedded SVGs still go through the theme transform.

## Example with multiple components

` + "```" + `ts
/**
 * @name SunIcon
 * @preview https://icons.example.com/sun.svg
 */
export const SunIcon = () => { ... };

/**
 * @name MoonIcon
 * @preview data:image/svg+xml;base64,PHN2ZyAuLi4+
 */
export const MoonIcon = () => { ... };
` + "```" + `
`
