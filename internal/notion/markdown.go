// Converts Notion blocks to Markdown.

package notion

import (
	"strings"
)

// PageURLPrefix is prepended to compact block identifiers in child page links.
const PageURLPrefix = "https://www.notion.so/"

// blockSeparator terminates every rendered block.
const blockSeparator = "\n\n"

// BlocksToMarkdown converts a slice of Notion blocks to markdown.
//
// Each recognized block renders as one section followed by a blank line, in
// input order. Unrecognized block types are skipped without output.
func BlocksToMarkdown(blocks []Block) string {
	var sb strings.Builder
	for i := range blocks {
		md, ok := blockToMarkdown(&blocks[i])
		if !ok {
			continue
		}
		sb.WriteString(md)
		sb.WriteString(blockSeparator)
	}
	return sb.String()
}

// blockToMarkdown converts a single block to markdown, without the trailing
// separator. ok is false for block types that have no Markdown form.
//
// A recognized block with a missing payload renders as an empty section.
func blockToMarkdown(block *Block) (md string, ok bool) {
	switch block.Type {
	case "paragraph":
		if block.Paragraph != nil {
			return richTextToMarkdown(block.Paragraph.RichText), true
		}

	case "heading_1":
		if block.Heading1 != nil {
			return "# " + richTextToMarkdown(block.Heading1.RichText), true
		}

	case "heading_2":
		if block.Heading2 != nil {
			return "## " + richTextToMarkdown(block.Heading2.RichText), true
		}

	case "heading_3":
		if block.Heading3 != nil {
			return "### " + richTextToMarkdown(block.Heading3.RichText), true
		}

	case "bulleted_list_item":
		if block.BulletedListItem != nil {
			return "- " + richTextToMarkdown(block.BulletedListItem.RichText), true
		}

	case "numbered_list_item":
		// Markdown renumbers consecutive items, so every item is "1.".
		if block.NumberedListItem != nil {
			return "1. " + richTextToMarkdown(block.NumberedListItem.RichText), true
		}

	case "to_do":
		if block.ToDo != nil {
			checkbox := "[ ]"
			if block.ToDo.Checked {
				checkbox = "[x]"
			}
			return "- " + checkbox + " " + richTextToMarkdown(block.ToDo.RichText), true
		}

	case "toggle":
		if block.Toggle != nil {
			return "<details><summary>" + richTextToMarkdown(block.Toggle.RichText) + "</summary>\n\n" +
				BlocksToMarkdown(block.Children) + "</details>", true
		}

	case "child_page":
		if block.ChildPage != nil {
			return "[" + block.ChildPage.Title + "](" + PageURLPrefix + CompactID(block.ID) + ")", true
		}

	case "quote":
		if block.Quote != nil {
			return "> " + richTextToMarkdown(block.Quote.RichText), true
		}

	case "image":
		if block.Image != nil {
			if block.Image.External != nil && block.Image.External.URL != "" {
				return "![Image](" + block.Image.External.URL + ")", true
			}
			if block.Image.File != nil && block.Image.File.URL != "" {
				return "![Image](" + block.Image.File.URL + ")", true
			}
		}

	case "embed":
		if block.Embed != nil {
			return "[Embed Link](" + block.Embed.URL + ")", true
		}

	case "video":
		// Hosted video files are signed, short-lived URLs; only external ones are kept.
		if block.Video != nil && block.Video.External != nil && block.Video.External.URL != "" {
			return "![Video](" + block.Video.External.URL + ")", true
		}

	default:
		return "", false
	}

	return "", true
}

// richTextToMarkdown converts rich text to markdown with formatting.
//
// Annotations wrap cumulatively: bold innermost, then italic, strikethrough
// and underline; a link wraps the result. Spans are joined by a space.
func richTextToMarkdown(rt []RichText) string {
	parts := make([]string, 0, len(rt))
	for _, t := range rt {
		text := t.PlainText

		if t.Annotations != nil {
			if t.Annotations.Bold {
				text = "**" + text + "**"
			}
			if t.Annotations.Italic {
				text = "*" + text + "*"
			}
			if t.Annotations.Strikethrough {
				text = "~~" + text + "~~"
			}
			if t.Annotations.Underline {
				text = "__" + text + "__"
			}
		}

		if t.Href != nil && *t.Href != "" {
			text = "[" + text + "](" + *t.Href + ")"
		}

		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}
