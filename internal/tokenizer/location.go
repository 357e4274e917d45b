package tokenizer

import "sort"

// FileLocationMap converts byte offsets within one source text to
// 1-based line and column numbers.
type FileLocationMap struct {
	lineStarts []uint32
}

// NewFileLocationMap indexes the line starts of text.
func NewFileLocationMap(text string) *FileLocationMap {
	starts := []uint32{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &FileLocationMap{lineStarts: starts}
}

// LineColumn returns the line and column of offset. Columns count bytes.
func (m *FileLocationMap) LineColumn(offset uint32) (line, col int) {
	i := sort.Search(len(m.lineStarts), func(i int) bool {
		return m.lineStarts[i] > offset
	})
	// lineStarts[0] == 0, so i >= 1
	return i, int(offset-m.lineStarts[i-1]) + 1
}

// Lines reports how many lines the indexed text spans.
func (m *FileLocationMap) Lines() int {
	return len(m.lineStarts)
}
