package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"appimage-installer/internal/config"

	"github.com/chzyer/readline"
)

// pathCompleter completes the line as a file system path
type pathCompleter struct{}

// Do implements readline.AutoCompleter
func (pathCompleter) Do(line []rune, pos int) ([][]rune, int) {
	input := string(line[:pos])
	if input == "~" {
		return [][]rune{[]rune("/")}, 0
	}

	dir, prefix := filepath.Split(input)
	lookup := dir
	if lookup == "" {
		lookup = "."
	}

	entries, err := os.ReadDir(config.ExpandHome(lookup))
	if err != nil {
		return nil, 0
	}

	var matches []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		suffix := strings.TrimPrefix(name, prefix)
		if e.IsDir() {
			suffix += "/"
		}
		matches = append(matches, suffix)
	}
	sort.Strings(matches)

	out := make([][]rune, len(matches))
	for i, m := range matches {
		out[i] = []rune(m)
	}
	return out, len([]rune(prefix))
}

// ReadPath reads a path from the terminal with Tab completion
func ReadPath(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt + " ",
		AutoComplete:    pathCompleter{},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return config.ExpandHome(line), nil
}
