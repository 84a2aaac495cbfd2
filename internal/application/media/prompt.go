package media

import (
	"fmt"
	"strings"
)

// PromptContext 图像提示词的书籍/章节上下文
type PromptContext struct {
	BookTitle         string
	ReadingLevel      string
	LearningObjective string
	ChapterTitle      string
	// PriorText 阅读顺序中目标页之前的全部正文
	PriorText string
}

const minimalImagePrompt = "This is the page content from a picture book, please generate an appropriate image " +
	"that matches the content on the page. Here is the page content: <PAGE> %s </PAGE>"

// BuildImagePrompt 构建图像提示词
// pc 为 nil 时只使用页面正文
func BuildImagePrompt(content string, pc *PromptContext) string {
	content = strings.TrimSpace(content)
	if pc == nil {
		return fmt.Sprintf(minimalImagePrompt, content)
	}

	var b strings.Builder
	b.WriteString("This is the page content from a picture book. Write a very detailed prompt for an image ")
	b.WriteString("that matches the content on the page and the learning outcomes of the book. ")
	writeTag(&b, "The chapter theme is: ", "CHAPTER_TITLE", pc.ChapterTitle, ". ")
	writeTag(&b, "The book title is: ", "BOOK_TITLE", pc.BookTitle, ". ")
	writeTag(&b, "The target reading level is: ", "TARGET_LEVEL", pc.ReadingLevel, ". ")
	writeTag(&b, "The lesson objective is: ", "LEARNING_OBJECTIVE", pc.LearningObjective, ". ")
	writeTag(&b, "All previous page content up to this page: ", "PREVIOUS_PAGE_CONTENT", pc.PriorText, " ")
	writeTag(&b, "The current page to illustrate: ", "PAGE", content, ". ")
	b.WriteString("Ensure the image is historically and culturally accurate for any people portrayed, ")
	b.WriteString("including ethnicity, gender and age. ")
	b.WriteString("Respond with the image prompt only, without any additional commentary or text.")
	return b.String()
}

func writeTag(b *strings.Builder, lead, tag, value, tail string) {
	b.WriteString(lead)
	b.WriteString("<" + tag + "> ")
	b.WriteString(strings.TrimSpace(value))
	b.WriteString(" </" + tag + ">")
	b.WriteString(tail)
}

// sentence 去除首尾空白，缺少句末标点时补句号
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

// NarrationText 单页朗读文本
// 全书第一页前置 "书名. 章节名."，其他章节首页前置 "章节名."
func NarrationText(bookTitle string, pos PagePosition) string {
	content := strings.TrimSpace(pos.Page.Content)
	if content == "" {
		return ""
	}

	var prefix []string
	switch {
	case pos.FirstOfBook:
		prefix = append(prefix, sentence(bookTitle), sentence(pos.Chapter.Title))
	case pos.FirstInChapter:
		prefix = append(prefix, sentence(pos.Chapter.Title))
	default:
		return content
	}

	parts := make([]string, 0, len(prefix)+1)
	for _, p := range prefix {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return content
	}
	return strings.Join(append(parts, sentence(content)), " ")
}

// BookTranscript 整书朗读稿：每页依次为页标题、章节名、正文
func BookTranscript(order *ReadingOrder) string {
	var lines []string
	for _, pos := range order.Positions() {
		for _, line := range []string{pos.Page.Title, pos.Chapter.Title, pos.Page.Content} {
			if s := sentence(line); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}
