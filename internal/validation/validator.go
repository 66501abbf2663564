// Package validation checks a batch of candidate submission files before
// anything is sent to GitHub. It is pure: no network I/O, no side effects.
// Validation always runs to completion over the whole batch so a caller sees
// every problem at once rather than fixing files one at a time.
package validation

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
)

const (
	// MaxFilenameLength bounds the file name including the extension.
	MaxFilenameLength = 255
	// MaxFileKB bounds the decoded size of a single file.
	MaxFileKB = 10000
)

// battleResultFields are the top-level fields any recognized battle-result
// file carries, either directly or nested under the "data" wrapper.
var battleResultFields = []string{"battleInfo", "matchups", "characterRecord", "mapRecord"}

const wrapperField = "data"

var safeNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Result holds everything found in one validation pass. Errors block the
// submission; warnings are surfaced to the contributor but do not.
type Result struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether the batch may be published.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks every file in the batch against maxFiles. Per-file checks
// short-circuit on the first failing class for that file, but a bad file
// never stops validation of its siblings.
func Validate(files []models.SubmissionFile, maxFiles int) Result {
	var result Result

	if len(files) > maxFiles {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Too many files: %d (maximum %d)", len(files), maxFiles))
	}

	seen := make(map[string]bool, len(files))
	for _, file := range files {
		if seen[file.Name] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: Duplicate file name in submission", file.Name))
		}
		seen[file.Name] = true

		if err := checkFile(file); err != "" {
			result.Errors = append(result.Errors, err)
		}

		if base, ok := strings.CutSuffix(file.Name, ".json"); ok && base != "" && !safeNamePattern.MatchString(base) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: File name contains characters outside A-Za-z0-9_-", file.Name))
		}
	}

	return result
}

// checkFile runs the ordered per-file classes and returns the first failure,
// or "" when the file passes.
func checkFile(file models.SubmissionFile) string {
	if !strings.HasSuffix(file.Name, ".json") {
		return fmt.Sprintf("%s: Must be a .json file", file.Name)
	}
	if len(file.Name) > MaxFilenameLength {
		return fmt.Sprintf("%s: File name exceeds %d characters", file.Name, MaxFilenameLength)
	}

	raw, err := base64.StdEncoding.DecodeString(file.Content)
	if err != nil {
		return fmt.Sprintf("%s: Content is not valid base64", file.Name)
	}

	size := file.Size
	if size <= 0 {
		size = int64(len(raw))
	}
	if size > MaxFileKB*1024 {
		return fmt.Sprintf("%s: File exceeds %d KB", file.Name, MaxFileKB)
	}

	text, err := decodeText(raw)
	if err != nil {
		return fmt.Sprintf("%s: %v", file.Name, err)
	}

	var value interface{}
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return fmt.Sprintf("%s: Invalid JSON: %v", file.Name, err)
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Sprintf("%s: Expected a JSON object but found %s", file.Name, kindOf(value))
	}

	if !hasBattleStructure(obj) {
		return fmt.Sprintf("%s: missing expected battle result fields or structure", file.Name)
	}

	return ""
}

// decodeText sniffs the byte-order mark: FF FE selects UTF-16LE, EF BB BF is
// stripped and the rest read as UTF-8, anything else is read as plain UTF-8.
func decodeText(raw []byte) (string, error) {
	if len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		decoded, err := decoder.Bytes(raw)
		if err != nil {
			return "", errors.New("content is not valid UTF-16LE")
		}
		return string(decoded), nil
	}

	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		raw = raw[3:]
	}
	if !utf8.Valid(raw) {
		return "", errors.New("content is not valid UTF-8")
	}
	return string(raw), nil
}

func hasBattleStructure(obj map[string]interface{}) bool {
	for _, field := range battleResultFields {
		if _, ok := obj[field]; ok {
			return true
		}
	}

	wrapper, ok := obj[wrapperField].(map[string]interface{})
	if !ok {
		return false
	}
	for _, field := range battleResultFields {
		if _, ok := wrapper[field]; ok {
			return true
		}
	}
	return false
}

func kindOf(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return "an unexpected value"
	}
}
