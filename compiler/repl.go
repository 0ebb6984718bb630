package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/sanity-io/litter"
	"github.com/xiaobogaga/cylon/compiler/internal"
)

const (
	historyFile = ".cylon_history"
	replFile    = "repl.cy"
	promptMain  = "cy> "
	promptCont  = "... "
)

// runRepl compiles what is typed and prints the javascript. :tokens and :ast followed by a snippet
// print its tokens or its ast instead, :quit leaves.
func runRepl() int {
	fmt.Println("cylon repl, :quit to exit")
	home, _ := os.UserHomeDir()
	historyPath := filepath.Join(home, historyFile)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		input, ok := readSnippet(line)
		if !ok {
			fmt.Println()
			return 0
		}
		command, snippet := splitCommand(input)
		if command == "" && strings.TrimSpace(snippet) == "" {
			continue
		}
		line.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		switch command {
		case ":quit":
			return 0
		case ":tokens":
			litter.Dump(internal.NewTokenizer(snippet, true).All())
		case ":ast":
			module, err := internal.Parse(snippet, replFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
				continue
			}
			litter.Dump(module)
		case "":
			output, err := internal.Compile(replFile, snippet)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
				continue
			}
			fmt.Print(output.Code)
		default:
			fmt.Printf("unknown command %s. Type :tokens, :ast or :quit.\n", command)
		}
	}
}

func splitCommand(input string) (string, string) {
	trimmed := strings.TrimLeft(input, " ")
	if !strings.HasPrefix(trimmed, ":") {
		return "", input
	}
	end := strings.IndexAny(trimmed, " \n")
	if end < 0 {
		return strings.ToLower(trimmed), ""
	}
	return strings.ToLower(trimmed[:end]), strings.TrimLeft(trimmed[end:], " \n")
}

// readSnippet reads lines until they parse, or until the parse fails before the end of the input.
// An empty line ends the snippet anyway.
func readSnippet(line *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		text, err := line.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			if text == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(text)

		_, snippet := splitCommand(b.String())
		if _, err := internal.Parse(snippet, replFile); err != nil && internal.IsIncomplete(err) {
			continue
		}
		return b.String(), true
	}
}
