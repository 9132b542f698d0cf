package texts

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/tempotype/internal/model"
)

// LoadWords reads one word per line, keeping the words accepted by the
// language filter.
func LoadWords(path string, lang model.Language) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	keep := filterForLang(lang)
	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !keep(line) {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

func filterForLang(lang model.Language) func(string) bool {
	switch lang {
	case model.LanguageEnglish:
		return filterEnglishASCII
	default:
		return func(string) bool { return true }
	}
}

func filterEnglishASCII(word string) bool {
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return word != ""
}
