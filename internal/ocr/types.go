package ocr

import (
	"context"
	"image"
	"strings"
)

// Line is a single line of recognized text
type Line struct {
	Text string
}

// Block is a group of lines the engine considers related, usually a paragraph
type Block struct {
	Lines []Line
}

// Result is the recognized text of one image, in reading order
type Result struct {
	Blocks []Block
}

// Lines flattens the result into line strings, block order then line order
func (r *Result) Lines() []string {
	if r == nil {
		return nil
	}
	var lines []string
	for _, b := range r.Blocks {
		for _, l := range b.Lines {
			lines = append(lines, l.Text)
		}
	}
	return lines
}

// NewResult builds a single-block result from raw lines, handy for callers
// that already have text in hand
func NewResult(lines ...string) *Result {
	block := Block{Lines: make([]Line, 0, len(lines))}
	for _, l := range lines {
		block.Lines = append(block.Lines, Line{Text: l})
	}
	return &Result{Blocks: []Block{block}}
}

// ParseText splits plain engine output into blocks separated by blank lines
func ParseText(text string) *Result {
	result := &Result{}
	var current Block
	flush := func() {
		if len(current.Lines) > 0 {
			result.Blocks = append(result.Blocks, current)
			current = Block{}
		}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current.Lines = append(current.Lines, Line{Text: line})
	}
	flush()

	return result
}

// Engine defines the interface for text recognition
type Engine interface {
	// Recognize reads the text in img
	Recognize(ctx context.Context, img image.Image) (*Result, error)
	// Close releases engine resources
	Close() error
}
