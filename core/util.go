package core

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// DateLayout is the date format the backend expects (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var (
	searchMinFuzzyLen = 4
	searchMinRatio    = .75
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run, so we walk up from there.
// Falls back to the current working directory.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// FlexString decodes from either a JSON string or a JSON number.
// The backend is not consistent about ids (`id: 3` vs `_id: "..."`) and durations ("3 oy" vs 3).
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(b)
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// MatchSearch does a case-insensitive match of `term` against `fields`.
// Terms of 4+ characters also match a word that is close enough (typo tolerance).
func MatchSearch(term string, fields ...string) bool {
	term = CleanString(term, true /* lower */)
	if term == "" {
		return true
	}
	for _, fld := range fields {
		if strings.Contains(strings.ToLower(fld), term) {
			return true
		}
	}
	if utf8.RuneCountInString(term) < searchMinFuzzyLen {
		return false
	}
	for _, fld := range fields {
		for _, word := range strings.Fields(strings.ToLower(fld)) {
			m := difflib.NewMatcher(strings.Split(term, ""), strings.Split(word, ""))
			if m.QuickRatio() >= searchMinRatio && m.Ratio() >= searchMinRatio {
				return true
			}
		}
	}
	return false
}
