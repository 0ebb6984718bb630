package internal

import (
	"encoding/json"
	"strings"
)

// SourceMap is a version 3 source map. It marshals to the standard json document.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

func (sourceMap *SourceMap) JSON() ([]byte, error) {
	return json.Marshal(sourceMap)
}

// mapping ties a position of the output to a position of the source, all 0 based.
type mapping struct {
	generatedLine   int
	generatedColumn int
	sourceLine      int
	sourceColumn    int
	name            string
}

type sourceMapBuilder struct {
	file      string
	source    string
	content   string
	mappings  []mapping
	names     []string
	nameIndex map[string]int
}

func newSourceMapBuilder(file, source, content string) *sourceMapBuilder {
	return &sourceMapBuilder{file: file, source: source, content: content, nameIndex: map[string]int{}}
}

// add records m. Mappings come in output order, a second mapping for the same output position is dropped.
func (builder *sourceMapBuilder) add(m mapping) {
	if n := len(builder.mappings); n > 0 {
		last := builder.mappings[n-1]
		if last.generatedLine == m.generatedLine && last.generatedColumn == m.generatedColumn {
			return
		}
	}
	if m.name != "" {
		if _, ok := builder.nameIndex[m.name]; !ok {
			builder.nameIndex[m.name] = len(builder.names)
			builder.names = append(builder.names, m.name)
		}
	}
	builder.mappings = append(builder.mappings, m)
}

func (builder *sourceMapBuilder) build() *SourceMap {
	names := builder.names
	if names == nil {
		names = []string{}
	}
	return &SourceMap{
		Version:        3,
		File:           builder.file,
		Sources:        []string{builder.source},
		SourcesContent: []string{builder.content},
		Names:          names,
		Mappings:       builder.encode(),
	}
}

// encode writes the mappings as base64 vlq segments: lines separated by ';', segments by ','.
// The generated column restarts on every line, the other fields are relative to the previous segment.
func (builder *sourceMapBuilder) encode() string {
	var out strings.Builder
	line := 0
	previousColumn, previousSourceLine, previousSourceColumn, previousName := 0, 0, 0, 0
	for i, m := range builder.mappings {
		if m.generatedLine != line {
			for line < m.generatedLine {
				out.WriteByte(';')
				line++
			}
			previousColumn = 0
		} else if i > 0 {
			out.WriteByte(',')
		}
		encodeVLQ(&out, m.generatedColumn-previousColumn)
		encodeVLQ(&out, 0) // the only source
		encodeVLQ(&out, m.sourceLine-previousSourceLine)
		encodeVLQ(&out, m.sourceColumn-previousSourceColumn)
		previousColumn = m.generatedColumn
		previousSourceLine = m.sourceLine
		previousSourceColumn = m.sourceColumn
		if m.name != "" {
			index := builder.nameIndex[m.name]
			encodeVLQ(&out, index-previousName)
			previousName = index
		}
	}
	return out.String()
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func encodeVLQ(out *strings.Builder, value int) {
	vlq := value << 1
	if value < 0 {
		vlq = (-value << 1) | 1
	}
	for {
		digit := vlq & 31
		vlq >>= 5
		if vlq > 0 {
			digit |= 32
		}
		out.WriteByte(base64Digits[digit])
		if vlq == 0 {
			return
		}
	}
}
