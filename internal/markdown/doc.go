// Package markdown turns a content file into a ParsedContent: it splits the
// frontmatter block, decodes the recognised keys, renders the body with
// goldmark and derives the slug from the file name.
package markdown
